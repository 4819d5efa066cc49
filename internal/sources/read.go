package sources

import (
	"encoding/json"
	"fmt"
	"os"
)

// DecodeBase validates and decodes the AOD envelope {"data": [...]}.
func DecodeBase(raw []byte) ([]BaseEntry, error) {
	var envelope struct {
		Data []BaseEntry `json:"data"`
	}
	if err := decodeValidated(SchemaAOD, raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ReadBase loads the AOD dataset file.
func ReadBase(path string) ([]BaseEntry, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := DecodeBase(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ReadARM loads the ARM dataset.
func ReadARM(path string) (Batch[ARMEntry], error) {
	return readList(path, SchemaARM, validARM)
}

// ReadAniTrakt loads and concatenates AniTrakt files (TV and movie dumps).
func ReadAniTrakt(paths ...string) (Batch[AniTraktEntry], error) {
	var out Batch[AniTraktEntry]
	for _, path := range paths {
		batch, err := readList(path, SchemaAniTrakt, validAniTrakt)
		if err != nil {
			return Batch[AniTraktEntry]{}, err
		}
		out.Items = append(out.Items, batch.Items...)
		out.Skipped += batch.Skipped
	}
	return out, nil
}

// ReadFribb loads the Fribb anime-lists dataset.
func ReadFribb(path string) (Batch[FribbEntry], error) {
	return readList(path, SchemaFribb, validFribb)
}

// ReadKaize loads scraped Kaize titles.
func ReadKaize(path string) (Batch[KaizeEntry], error) {
	return readList(path, SchemaKaize, validKaize)
}

// ReadNautiljon loads scraped Nautiljon titles.
func ReadNautiljon(path string) (Batch[NautiljonEntry], error) {
	return readList(path, SchemaNautiljon, validNautiljon)
}

// ReadOtakOtaku loads scraped Otak Otaku titles.
func ReadOtakOtaku(path string) (Batch[OtakOtakuEntry], error) {
	return readList(path, SchemaOtakOtaku, validOtakOtaku)
}

// ReadSilverYasha loads SilverYasha titles from either a bare list or the
// {"data": [...]} envelope.
func ReadSilverYasha(path string) (Batch[SilverYashaEntry], error) {
	raw, err := readFile(path)
	if err != nil {
		return Batch[SilverYashaEntry]{}, err
	}
	value, err := ValidateJSON(SchemaSilverYasha, raw)
	if err != nil {
		return Batch[SilverYashaEntry]{}, fmt.Errorf("%s: %w", path, err)
	}
	if envelope, ok := value.(map[string]any); ok {
		value = envelope["data"]
	}
	var items []SilverYashaEntry
	if err := remarshal(value, &items); err != nil {
		return Batch[SilverYashaEntry]{}, fmt.Errorf("%s: %w", path, err)
	}
	return keep(items, validSilverYasha), nil
}

func readList[T any](path, schema string, valid func(T) bool) (Batch[T], error) {
	raw, err := readFile(path)
	if err != nil {
		return Batch[T]{}, err
	}
	var items []T
	if err := decodeValidated(schema, raw, &items); err != nil {
		return Batch[T]{}, fmt.Errorf("%s: %w", path, err)
	}
	return keep(items, valid), nil
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return raw, nil
}

func decodeValidated(schema string, raw []byte, target any) error {
	value, err := ValidateJSON(schema, raw)
	if err != nil {
		return err
	}
	return remarshal(value, target)
}

func remarshal(value, target any) error {
	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, target); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
