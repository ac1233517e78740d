package geometry

import (
	"encoding/json"
	"fmt"
)

// wireGeometry is the soundevent JSON shape: {"type": "...", "coordinates": ...}.
type wireGeometry struct {
	Type        Type            `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Marshal encodes g in the soundevent wire format. Coordinate pairs are
// [time, freq] arrays.
func Marshal(g Geometry) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrInvalidGeometry)
	}
	var coords any
	switch v := g.(type) {
	case TimeStamp:
		coords = v.Time
	case TimeInterval:
		coords = [2]float64{v.Start, v.End}
	case BoundingBox:
		coords = [4]float64{v.StartTime, v.LowFreq, v.EndTime, v.HighFreq}
	case Point:
		coords = pair(v.Position)
	case LineString:
		coords = pairs(v.Coordinates)
	case MultiPoint:
		coords = pairs(v.Points)
	case Polygon:
		coords = pairRings(v.Rings)
	case MultiLineString:
		coords = pairRings(v.Lines)
	case MultiPolygon:
		polys := make([][][][2]float64, len(v.Polygons))
		for i, rings := range v.Polygons {
			polys[i] = pairRings(rings)
		}
		coords = polys
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}

	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s coordinates: %w", g.Type(), err)
	}
	return json.Marshal(wireGeometry{Type: g.Type(), Coordinates: raw})
}

// Unmarshal decodes the soundevent wire format and validates the result.
func Unmarshal(data []byte) (Geometry, error) {
	var w wireGeometry
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}

	var g Geometry
	var err error
	switch w.Type {
	case TimeStampType:
		var t float64
		err = json.Unmarshal(w.Coordinates, &t)
		g = TimeStamp{Time: t}
	case TimeIntervalType:
		var c [2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = TimeInterval{Start: c[0], End: c[1]}
	case BoundingBoxType:
		var c [4]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = BoundingBox{StartTime: c[0], LowFreq: c[1], EndTime: c[2], HighFreq: c[3]}
	case PointType:
		var c [2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = Point{Position: fromPair(c)}
	case LineStringType:
		var c [][2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = LineString{Coordinates: fromPairs(c)}
	case MultiPointType:
		var c [][2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = MultiPoint{Points: fromPairs(c)}
	case PolygonType:
		var c [][][2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = Polygon{Rings: fromPairRings(c)}
	case MultiLineStringType:
		var c [][][2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		g = MultiLineString{Lines: fromPairRings(c)}
	case MultiPolygonType:
		var c [][][][2]float64
		err = json.Unmarshal(w.Coordinates, &c)
		polys := make([][][]Position, len(c))
		for i, rings := range c {
			polys[i] = fromPairRings(rings)
		}
		g = MultiPolygon{Polygons: polys}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, w.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s coordinates: %w", w.Type, err)
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

func pair(p Position) [2]float64 { return [2]float64{p.Time, p.Freq} }

func fromPair(c [2]float64) Position { return Position{Time: c[0], Freq: c[1]} }

func pairs(ps []Position) [][2]float64 {
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		out[i] = pair(p)
	}
	return out
}

func fromPairs(cs [][2]float64) []Position {
	out := make([]Position, len(cs))
	for i, c := range cs {
		out[i] = fromPair(c)
	}
	return out
}

func pairRings(rings [][]Position) [][][2]float64 {
	out := make([][][2]float64, len(rings))
	for i, r := range rings {
		out[i] = pairs(r)
	}
	return out
}

func fromPairRings(rings [][][2]float64) [][]Position {
	out := make([][]Position, len(rings))
	for i, r := range rings {
		out[i] = fromPairs(r)
	}
	return out
}
