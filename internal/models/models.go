package models

import "encoding/xml"

// XML namespaces used by Bambu Studio projects
const (
	NamespaceCore       = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"
	NamespaceBambu      = "http://schemas.bambulab.com/package/2021"
	NamespaceProduction = "http://schemas.microsoft.com/3dmanufacturing/production/2015/06"
)

// Model represents a 3MF model structure
type Model struct {
	XMLName            xml.Name   `xml:"model"`
	Xmlns              string     `xml:"xmlns,attr"`
	XmlnsBambuStudio   string     `xml:"xmlns:BambuStudio,attr,omitempty"`
	XmlnsP             string     `xml:"xmlns:p,attr,omitempty"`
	RequiredExtensions string     `xml:"requiredextensions,attr,omitempty"`
	Unit               string     `xml:"unit,attr"`
	Lang               string     `xml:"xml:lang,attr,omitempty"`
	Metadata           []Metadata `xml:"metadata"`
	Resources          Resources  `xml:"resources"`
	Build              Build      `xml:"build"`
}

// MetadataValue returns the value of the named model metadata entry
func (m *Model) MetadataValue(name string) (string, bool) {
	for _, md := range m.Metadata {
		if md.Name == name {
			return md.Value, true
		}
	}
	return "", false
}

type Metadata struct {
	Name     string `xml:"name,attr"`
	Preserve string `xml:"preserve,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type Resources struct {
	Objects []Object `xml:"object"`
}

type Object struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
	Type string `xml:"type,attr"`
	UUID string `xml:"p:UUID,attr,omitempty"`
	Mesh *Mesh  `xml:"mesh"`
}

type Mesh struct {
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

type Vertices struct {
	Vertex []Vertex `xml:"vertex"`
}

// Vertex coordinates are kept as text so they are written exactly as formatted
type Vertex struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
	Z string `xml:"z,attr"`
}

type Triangles struct {
	Triangle []Triangle `xml:"triangle"`
}

type Triangle struct {
	V1 int `xml:"v1,attr"`
	V2 int `xml:"v2,attr"`
	V3 int `xml:"v3,attr"`
}

type Build struct {
	UUID  string `xml:"p:UUID,attr,omitempty"`
	Items []Item `xml:"item"`
}

type Item struct {
	ObjectID  string `xml:"objectid,attr"`
	Transform string `xml:"transform,attr,omitempty"`
	Printable string `xml:"printable,attr,omitempty"`
	UUID      string `xml:"p:UUID,attr,omitempty"`
}

// ModelSettings represents Metadata/model_settings.config
type ModelSettings struct {
	XMLName xml.Name         `xml:"config"`
	Objects []SettingsObject `xml:"object"`
	Plate   Plate            `xml:"plate"`
}

type SettingsObject struct {
	ID       string             `xml:"id,attr"`
	Metadata []SettingsMetadata `xml:"metadata"`
	Parts    []Part             `xml:"part"`
}

type SettingsMetadata struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type Part struct {
	ID       string             `xml:"id,attr"`
	Subtype  string             `xml:"subtype,attr"`
	Metadata []SettingsMetadata `xml:"metadata"`
}

type Plate struct {
	Metadata       []SettingsMetadata `xml:"metadata"`
	ModelInstances []ModelInstance    `xml:"model_instance"`
}

type ModelInstance struct {
	Metadata []SettingsMetadata `xml:"metadata"`
}

// Lookup returns the value stored under key in a metadata list
func Lookup(metadata []SettingsMetadata, key string) (string, bool) {
	for _, md := range metadata {
		if md.Key == key {
			return md.Value, true
		}
	}
	return "", false
}

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName  xml.Name             `xml:"Types"`
	Xmlns    string               `xml:"xmlns,attr"`
	Defaults []ContentTypeDefault `xml:"Default"`
}

type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Relationships represents _rels/.rels
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Xmlns         string         `xml:"xmlns,attr"`
	Relationships []Relationship `xml:"Relationship"`
}

type Relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
	Type   string `xml:"Type,attr"`
}
