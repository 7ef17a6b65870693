// Package fes builds OGC Filter Encoding 1.1 expressions. The WOUDC WFS
// endpoint accepts these as the filter parameter of GetFeature requests.
package fes

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

const (
	nsOGC = "http://www.opengis.net/ogc"
	nsGML = "http://www.opengis.net/gml"

	// DefaultSRS is the coordinate reference system for bounding boxes.
	DefaultSRS = "urn:ogc:def:crs:EPSG::4326"

	// DefaultGeometryName is the feature property the spatial constraint
	// applies to.
	DefaultGeometryName = "geometry"
)

// Constraint is one predicate of a filter expression. Constraints combine
// with implicit conjunction.
type Constraint interface {
	node() any
}

// PropertyIsEqualTo matches features whose named property equals a literal.
type PropertyIsEqualTo struct {
	PropertyName string
	Literal      string
}

// BBox matches features whose geometry intersects a bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// PropertyIsBetween matches features whose named property lies between two
// literal boundaries, inclusive.
type PropertyIsBetween struct {
	PropertyName string
	Lower, Upper string
}

// PropertyIsGreaterThanOrEqualTo is the open-ended lower-bound comparison,
// used when a temporal range has no upper endpoint.
type PropertyIsGreaterThanOrEqualTo struct {
	PropertyName string
	Literal      string
}

// PropertyIsLessThanOrEqualTo is the open-ended upper-bound comparison,
// used when a temporal range has no lower endpoint.
type PropertyIsLessThanOrEqualTo struct {
	PropertyName string
	Literal      string
}

// Encode serializes constraints into an ogc:Filter document. Zero
// constraints yield the empty string (absent filter, unfiltered result); a
// single constraint is emitted directly; multiple constraints are wrapped
// in ogc:And.
func Encode(constraints []Constraint) (string, error) {
	if len(constraints) == 0 {
		return "", nil
	}

	var body any
	if len(constraints) == 1 {
		body = constraints[0].node()
	} else {
		and := andNode{}
		for _, c := range constraints {
			and.Nodes = append(and.Nodes, c.node())
		}
		body = and
	}

	doc := filterNode{NSOGC: nsOGC, NSGML: nsGML, Body: body}
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter: %w", err)
	}
	return string(out), nil
}

type filterNode struct {
	XMLName xml.Name `xml:"ogc:Filter"`
	NSOGC   string   `xml:"xmlns:ogc,attr"`
	NSGML   string   `xml:"xmlns:gml,attr"`
	Body    any
}

type andNode struct {
	XMLName xml.Name `xml:"ogc:And"`
	Nodes   []any
}

type equalToNode struct {
	XMLName      xml.Name `xml:"ogc:PropertyIsEqualTo"`
	PropertyName string   `xml:"ogc:PropertyName"`
	Literal      string   `xml:"ogc:Literal"`
}

type bboxNode struct {
	XMLName      xml.Name     `xml:"ogc:BBOX"`
	PropertyName string       `xml:"ogc:PropertyName"`
	Envelope     envelopeNode `xml:"gml:Envelope"`
}

type envelopeNode struct {
	SRSName     string `xml:"srsName,attr"`
	LowerCorner string `xml:"gml:lowerCorner"`
	UpperCorner string `xml:"gml:upperCorner"`
}

type betweenNode struct {
	XMLName       xml.Name     `xml:"ogc:PropertyIsBetween"`
	PropertyName  string       `xml:"ogc:PropertyName"`
	LowerBoundary boundaryNode `xml:"ogc:LowerBoundary"`
	UpperBoundary boundaryNode `xml:"ogc:UpperBoundary"`
}

type boundaryNode struct {
	Literal string `xml:"ogc:Literal"`
}

type greaterEqualNode struct {
	XMLName      xml.Name `xml:"ogc:PropertyIsGreaterThanOrEqualTo"`
	PropertyName string   `xml:"ogc:PropertyName"`
	Literal      string   `xml:"ogc:Literal"`
}

type lessEqualNode struct {
	XMLName      xml.Name `xml:"ogc:PropertyIsLessThanOrEqualTo"`
	PropertyName string   `xml:"ogc:PropertyName"`
	Literal      string   `xml:"ogc:Literal"`
}

func (c PropertyIsEqualTo) node() any {
	return equalToNode{PropertyName: c.PropertyName, Literal: c.Literal}
}

func (c BBox) node() any {
	return bboxNode{
		PropertyName: DefaultGeometryName,
		Envelope: envelopeNode{
			SRSName:     DefaultSRS,
			LowerCorner: coord(c.MinX) + " " + coord(c.MinY),
			UpperCorner: coord(c.MaxX) + " " + coord(c.MaxY),
		},
	}
}

func (c PropertyIsBetween) node() any {
	return betweenNode{
		PropertyName:  c.PropertyName,
		LowerBoundary: boundaryNode{Literal: c.Lower},
		UpperBoundary: boundaryNode{Literal: c.Upper},
	}
}

func (c PropertyIsGreaterThanOrEqualTo) node() any {
	return greaterEqualNode{PropertyName: c.PropertyName, Literal: c.Literal}
}

func (c PropertyIsLessThanOrEqualTo) node() any {
	return lessEqualNode{PropertyName: c.PropertyName, Literal: c.Literal}
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
