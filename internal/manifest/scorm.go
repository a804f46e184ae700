package manifest

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// EntryPoint is the launch file referenced by the SCORM resource.
const EntryPoint = "index.html"

type imsManifest struct {
	XMLName           xml.Name         `xml:"manifest"`
	Identifier        string           `xml:"identifier,attr"`
	Version           string           `xml:"version,attr"`
	Xmlns             string           `xml:"xmlns,attr"`
	XmlnsAdlcp        string           `xml:"xmlns:adlcp,attr"`
	XmlnsXsi          string           `xml:"xmlns:xsi,attr"`
	SchemaLocation    string           `xml:"xsi:schemaLocation,attr"`
	Metadata          imsMetadata      `xml:"metadata"`
	Organizations     imsOrganizations `xml:"organizations"`
	ResourceContainer imsResources     `xml:"resources"`
}

type imsMetadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type imsOrganizations struct {
	Default       string            `xml:"default,attr"`
	Organizations []imsOrganization `xml:"organization"`
}

type imsOrganization struct {
	Identifier string  `xml:"identifier,attr"`
	Title      string  `xml:"title"`
	Item       imsItem `xml:"item"`
}

type imsItem struct {
	Identifier    string `xml:"identifier,attr"`
	IdentifierRef string `xml:"identifierref,attr"`
	IsVisible     string `xml:"isvisible,attr"`
	Title         string `xml:"title"`
	MasteryScore  string `xml:"adlcp:masteryscore,omitempty"`
	MaxTimeAllow  string `xml:"adlcp:maxtimeallowed,omitempty"`
	TimeLimitAct  string `xml:"adlcp:timelimitaction,omitempty"`
}

type imsResources struct {
	Resources []imsResource `xml:"resource"`
}

type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	ScormType  string    `xml:"adlcp:scormtype,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}

type imsFile struct {
	Href string `xml:"href,attr"`
}

// SCORM12 renders imsmanifest.xml for p. files lists every packaged path
// other than the manifest itself, in archive order.
func SCORM12(p Package, files []string) ([]byte, error) {
	item := imsItem{
		Identifier:    "item_1",
		IdentifierRef: "resource_1",
		IsVisible:     "true",
		Title:         p.Title,
	}
	if p.CompletionCriteria == CompletionPassAssessment {
		item.MasteryScore = fmt.Sprintf("%d", p.PassMark)
	}
	if p.TimeLimitSeconds > 0 {
		item.MaxTimeAllow = scormTimespan(p.TimeLimitSeconds)
		item.TimeLimitAct = "exit,message"
	}

	resource := imsResource{
		Identifier: "resource_1",
		Type:       "webcontent",
		ScormType:  "sco",
		Href:       EntryPoint,
	}
	for _, f := range files {
		resource.Files = append(resource.Files, imsFile{Href: f})
	}

	doc := imsManifest{
		Identifier:     p.Identifier,
		Version:        p.Version,
		Xmlns:          "http://www.imsproject.org/xsd/imscp_rootv1p1p2",
		XmlnsAdlcp:     "http://www.adlnet.org/xsd/adlcp_rootv1p2",
		XmlnsXsi:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://www.imsproject.org/xsd/imscp_rootv1p1p2 imscp_rootv1p1p2.xsd http://www.adlnet.org/xsd/adlcp_rootv1p2 adlcp_rootv1p2.xsd",
		Metadata:       imsMetadata{Schema: "ADL SCORM", SchemaVersion: SCORMVersion},
		Organizations: imsOrganizations{
			Default: p.Identifier + "_org",
			Organizations: []imsOrganization{{
				Identifier: p.Identifier + "_org",
				Title:      p.Title,
				Item:       item,
			}},
		},
		ResourceContainer: imsResources{Resources: []imsResource{resource}},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode imsmanifest: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// scormTimespan formats seconds as the SCORM 1.2 HHHH:MM:SS timespan.
func scormTimespan(seconds int64) string {
	return fmt.Sprintf("%04d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
