package excel

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"xlcheck/ports"
)

// excelize reads cell values and formulas but keeps the extent ("ref") of an
// array formula private, so the worksheet parts are scanned for it directly.

const defaultWorkbookPath = "xl/workbook.xml"

type xlsxRelationships struct {
	Relationships []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// xlsxWorkbookSheets maps the sheets element of the workbook part. The
// relationship id attribute lives in a namespace that differs between
// transitional and strict documents, so all attributes are kept.
type xlsxWorkbookSheets struct {
	Sheets []struct {
		Name  string     `xml:"name,attr"`
		Attrs []xml.Attr `xml:",any,attr"`
	} `xml:"sheets>sheet"`
}

// sheetParts maps each sheet name to the zip path of its part
func sheetParts(zr *zip.Reader) (map[string]string, error) {
	workbookPath := defaultWorkbookPath
	var root xlsxRelationships
	if err := decodePart(zr, "_rels/.rels", &root); err == nil {
		for _, rel := range root.Relationships {
			if strings.HasSuffix(rel.Type, "/officeDocument") {
				workbookPath = resolvePartPath("", rel.Target)
				break
			}
		}
	}

	var workbook xlsxWorkbookSheets
	if err := decodePart(zr, workbookPath, &workbook); err != nil {
		return nil, err
	}

	relsPath := path.Join(path.Dir(workbookPath), "_rels", path.Base(workbookPath)+".rels")
	var rels xlsxRelationships
	if err := decodePart(zr, relsPath, &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = resolvePartPath(path.Dir(workbookPath), rel.Target)
	}

	parts := make(map[string]string, len(workbook.Sheets))
	for _, sheet := range workbook.Sheets {
		for _, attr := range sheet.Attrs {
			if attr.Name.Local == "id" && attr.Name.Space != "" {
				if target, ok := targets[attr.Value]; ok {
					parts[sheet.Name] = target
				}
			}
		}
	}
	return parts, nil
}

// resolvePartPath turns a relationship target into a zip path. Absolute
// targets start at the package root; relative ones at base.
func resolvePartPath(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(base, target))
}

func decodePart(zr *zip.Reader, name string, v interface{}) error {
	f, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open package part %s: %w", name, err)
	}
	defer f.Close()

	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode package part %s: %w", name, err)
	}
	return nil
}

// scanArrayFormulas streams a worksheet part and returns every
// <f t="array" ref="..."> in document order, keyed by the cell holding it
func scanArrayFormulas(r io.Reader) ([]ports.ArrayFormulaRef, error) {
	var (
		refs []ports.ArrayFormulaRef
		cell string
	)

	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return refs, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "c":
			cell = attrValue(start, "r")
		case "f":
			if attrValue(start, "t") != "array" {
				continue
			}
			ref := attrValue(start, "ref")
			anchor := cell
			if anchor == "" {
				// cells may omit r; the anchor is then the extent's top-left
				anchor, _, _ = strings.Cut(ref, ":")
			}
			if ref == "" {
				ref = anchor
			}
			if anchor == "" {
				continue
			}
			refs = append(refs, ports.ArrayFormulaRef{Anchor: anchor, Ref: ref})
		}
	}
}

func attrValue(start xml.StartElement, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
