// Package feature decodes GeoJSON feature collections into raw, per-feature
// records. Decoding is shallow: each feature keeps its geometry
// as raw JSON so a malformed feature rejects only itself.
package feature

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/EmpoweredVote/roadgeo/internal/attrs"
	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Raw is one feature of a collection, prior to validation.
type Raw struct {
	// Index is the feature's position in the source collection.
	Index      int
	Geometry   json.RawMessage
	Properties geojson.Properties
	// Err is set when the feature itself is not a JSON object.
	Err error
}

type collection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type rawFeature struct {
	Geometry   json.RawMessage    `json:"geometry"`
	Properties geojson.Properties `json:"properties"`
}

// DecodeCollection reads a FeatureCollection. Only a document that is not a
// feature collection at all is an error; broken features are returned with
// Err set.
func DecodeCollection(r io.Reader) ([]Raw, error) {
	var fc collection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode feature collection: unexpected type %q", fc.Type)
	}

	out := make([]Raw, len(fc.Features))
	for i, msg := range fc.Features {
		out[i].Index = i
		var f rawFeature
		if err := json.Unmarshal(msg, &f); err != nil {
			out[i].Err = fmt.Errorf("feature is not an object: %w", err)
			continue
		}
		if !isNull(f.Geometry) {
			out[i].Geometry = f.Geometry
		}
		out[i].Properties = f.Properties
	}
	return out, nil
}

// LoadFile decodes the feature collection stored at path.
func LoadFile(path string) ([]Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCollection(bufio.NewReader(f))
}

func isNull(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}

// Props returns the properties block, failing when the feature has none.
func (r Raw) Props() (geojson.Properties, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Properties == nil {
		return nil, &attrs.MissingFieldError{Field: "properties"}
	}
	return r.Properties, nil
}

// Kind returns the declared geometry type without decoding coordinates.
func (r Raw) Kind() (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if isNull(r.Geometry) {
		return "", &attrs.MissingFieldError{Field: "geometry"}
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(r.Geometry, &head); err != nil {
		return "", geo.Malformed("", "geometry is not an object", err)
	}
	if head.Type == "" {
		return "", &attrs.MissingFieldError{Field: "geometry.type"}
	}
	return head.Type, nil
}

// Geom decodes the geometry, accepting only the listed kinds. The kind check
// happens before the coordinates are touched, so an unsupported geometry is
// always reported as such even when its coordinates are also broken.
func (r Raw) Geom(accept ...string) (orb.Geometry, error) {
	kind, err := r.Kind()
	if err != nil {
		return nil, err
	}
	if !contains(accept, kind) {
		return nil, &geo.UnsupportedKindError{Kind: kind}
	}
	g, err := geojson.UnmarshalGeometry(r.Geometry)
	if err != nil {
		return nil, geo.Malformed(kind, "cannot decode coordinates", err)
	}
	if g.Coordinates == nil {
		return nil, geo.Malformed(kind, "no coordinates", nil)
	}
	return g.Coordinates, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
