package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"visitprep/pkg"
)

type yamlFile struct {
	Patients []yamlPatient `yaml:"patients"`
}

// yamlPatient decodes labs from a raw node so the mapping order written in
// the file is kept.
type yamlPatient struct {
	pkg.PatientRecord `yaml:",inline"`
	Labs              yaml.Node `yaml:"labs"`
}

// LoadFile reads patient records from a YAML file.
func LoadFile(path string) ([]pkg.PatientRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Parse decodes a YAML document of the form:
//
//	patients:
//	  - id: ben-hackett
//	    name: Ben Hackett
//	    age: 45
//	    labs:
//	      HbA1c: 7.5
//	      Blood Pressure: "145/90"
func Parse(r io.Reader) ([]pkg.PatientRecord, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode patients: %w", err)
	}

	out := make([]pkg.PatientRecord, 0, len(doc.Patients))
	for _, p := range doc.Patients {
		rec := p.PatientRecord
		labs, err := decodeLabs(&p.Labs)
		if err != nil {
			return nil, fmt.Errorf("patient %q: %w", rec.ID, err)
		}
		rec.Labs = labs
		out = append(out, rec)
	}
	return out, nil
}

func decodeLabs(n *yaml.Node) ([]pkg.Lab, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: labs must be a mapping", n.Line)
	}
	labs := make([]pkg.Lab, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: lab %q must be a scalar", v.Line, k.Value)
		}
		labs = append(labs, pkg.Lab{Name: k.Value})
		// Floats keep the text from the file so "4.0" is not shown as "4".
		if v.ShortTag() == "!!float" && json.Valid([]byte(v.Value)) {
			labs[len(labs)-1].Value = json.Number(v.Value)
			continue
		}
		if err := v.Decode(&labs[len(labs)-1].Value); err != nil {
			return nil, fmt.Errorf("line %d: lab %q: %w", v.Line, k.Value, err)
		}
	}
	return labs, nil
}
