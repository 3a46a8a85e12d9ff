package importer

import (
	"net"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
)

// Index is a read-only lookup over the existing asset population, built once
// per preview/commit pass. Detection never mutates it.
type Index struct {
	bySerial map[string]uuid.UUID
	byMAC    map[string]uuid.UUID
	entries  []fuzzyEntry
	assets   map[uuid.UUID]*asset.Asset
}

type fuzzyEntry struct {
	key string
	id  uuid.UUID
}

func BuildIndex(assets []*asset.Asset) *Index {
	idx := &Index{
		bySerial: make(map[string]uuid.UUID, len(assets)),
		byMAC:    make(map[string]uuid.UUID, len(assets)),
		assets:   make(map[uuid.UUID]*asset.Asset, len(assets)),
	}
	for _, a := range assets {
		idx.assets[a.ID()] = a
		if serial := normalizeSerial(a.SerialNumber()); serial != "" {
			idx.bySerial[serial] = a.ID()
		}
		if mac := normalizeMAC(a.MACAddress()); mac != "" {
			idx.byMAC[mac] = a.ID()
		}
		if key := fuzzyKey(a.Name(), a.AssetType()); key != "" {
			idx.entries = append(idx.entries, fuzzyEntry{key: key, id: a.ID()})
		}
	}
	return idx
}

// Asset resolves a matched record id back to the snapshot's asset.
func (idx *Index) Asset(id uuid.UUID) (*asset.Asset, bool) {
	a, ok := idx.assets[id]
	return a, ok
}

// Detector classifies normalized records against the index. Strategy order,
// first match wins: serial number exact, MAC address exact, then fuzzy
// name/type above the threshold.
type Detector struct {
	index     *Index
	threshold float64
}

func NewDetector(index *Index, threshold float64) *Detector {
	return &Detector{index: index, threshold: threshold}
}

func (d *Detector) Detect(rec NormalizedRecord) *importjob.DuplicateDetails {
	if serial := normalizeSerial(rec.Fields[importsource.FieldSerialNumber]); serial != "" {
		if id, ok := d.index.bySerial[serial]; ok {
			return &importjob.DuplicateDetails{
				MatchType:       importjob.MatchExact,
				MatchedField:    importsource.FieldSerialNumber,
				MatchedRecordID: id,
				Confidence:      1,
			}
		}
	}

	if mac := normalizeMAC(rec.Fields[importsource.FieldMACAddress]); mac != "" {
		if id, ok := d.index.byMAC[mac]; ok {
			return &importjob.DuplicateDetails{
				MatchType:       importjob.MatchExact,
				MatchedField:    importsource.FieldMACAddress,
				MatchedRecordID: id,
				Confidence:      1,
			}
		}
	}

	key := fuzzyKey(rec.Fields[importsource.FieldName], rec.Fields[importsource.FieldAssetType])
	if key == "" {
		return nil
	}

	var best *importjob.DuplicateDetails
	for _, entry := range d.index.entries {
		conf := similarity(key, entry.key)
		if conf < d.threshold {
			continue
		}
		if best == nil || conf > best.Confidence {
			best = &importjob.DuplicateDetails{
				MatchType:       importjob.MatchFuzzy,
				MatchedField:    importsource.FieldName,
				MatchedRecordID: entry.id,
				Confidence:      conf,
			}
		}
	}
	return best
}

// similarity maps an edit distance onto [0, 1]. Subsequence matches go
// through the fuzzysearch rank; substitutions fall back to a plain
// Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}

	dist := fuzzy.RankMatchNormalizedFold(a, b)
	if dist < 0 {
		dist = fuzzy.RankMatchNormalizedFold(b, a)
	}
	if dist < 0 {
		dist = levenshtein.ComputeDistance(a, b)
	}
	conf := 1 - float64(dist)/float64(maxLen)
	if conf < 0 {
		return 0
	}
	return conf
}

func normalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

func normalizeMAC(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if hw, err := net.ParseMAC(raw); err == nil {
		return hw.String()
	}
	return strings.ToLower(raw)
}

func fuzzyKey(name, assetType string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	assetType = strings.ToLower(strings.TrimSpace(assetType))
	if name == "" {
		return ""
	}
	if assetType == "" {
		return name
	}
	return name + " " + assetType
}
