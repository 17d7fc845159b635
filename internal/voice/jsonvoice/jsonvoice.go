// Package jsonvoice provides a non-normative JSON encoding of voice.Voice,
// used by tests and the CLI's inspect-voice/demo paths. It is explicitly
// not a decoder for the binary .htsvoice format: a binary voice-file
// parser is out of scope.
package jsonvoice

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/example/htsvoice/internal/pattern"
	"github.com/example/htsvoice/internal/voice"
)

type docVoice struct {
	SamplingFrequency int          `json:"sampling_frequency"`
	FramePeriod       int          `json:"frame_period"`
	NumStates         int          `json:"num_states"`
	Streams           []docStream  `json:"streams"`
	Duration          docTreeModel `json:"duration"`
}

type docStream struct {
	VectorLength int             `json:"vector_length"`
	NumWindows   int             `json:"num_windows"`
	IsMSD        bool            `json:"is_msd"`
	UseGV        bool            `json:"use_gv"`
	Option       []string        `json:"option"`
	Windows      []docWindow     `json:"windows"`
	Trees        []docTree       `json:"trees"`
	PDF          [][]docParam    `json:"pdf"`
	GV           *docTreeModelGV `json:"gv,omitempty"`
}

type docTreeModelGV struct {
	Trees []docTree    `json:"trees"`
	PDF   [][]docParam `json:"pdf"`
}

type docTreeModel struct {
	Trees []docTree    `json:"trees"`
	PDF   [][]docParam `json:"pdf"`
}

type docWindow struct {
	Offsets      []int     `json:"offsets"`
	Coefficients []float64 `json:"coefficients"`
}

type docTree struct {
	State int      `json:"state"`
	Gate  []string `json:"gate,omitempty"`
	Nodes []docNode `json:"nodes"`
}

type docNode struct {
	Patterns []string `json:"patterns,omitempty"`
	Yes      int      `json:"yes,omitempty"`
	No       int      `json:"no,omitempty"`
	Leaf     bool     `json:"leaf,omitempty"`
	PDFIndex int      `json:"pdf_index,omitempty"`
}

type docParam struct {
	Means []float64 `json:"means"`
	Vars  []float64 `json:"vars"`
	MSD   *float64  `json:"msd,omitempty"`
}

// Loader decodes the jsonvoice document format into voice.Voice. It
// satisfies voice.Loader.
type Loader struct{}

func (Loader) Load(r io.Reader) (voice.Voice, error) {
	var doc docVoice
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return voice.Voice{}, fmt.Errorf("jsonvoice: decode: %w", err)
	}

	streams := make([]voice.StreamModels, 0, len(doc.Streams))
	for i, s := range doc.Streams {
		states, err := toTreeModel(s.Trees, s.PDF)
		if err != nil {
			return voice.Voice{}, fmt.Errorf("jsonvoice: stream %d: %w", i, err)
		}

		var gv *voice.TreeModel
		if s.GV != nil {
			g, err := toTreeModel(s.GV.Trees, s.GV.PDF)
			if err != nil {
				return voice.Voice{}, fmt.Errorf("jsonvoice: stream %d gv: %w", i, err)
			}
			gv = &g
		}

		windows := make([]voice.Window, 0, len(s.Windows))
		for _, w := range s.Windows {
			windows = append(windows, voice.Window{Offsets: w.Offsets, Coefficients: w.Coefficients})
		}

		streams = append(streams, voice.StreamModels{
			Metadata: voice.StreamMetadata{
				VectorLength: s.VectorLength,
				NumWindows:   s.NumWindows,
				IsMSD:        s.IsMSD,
				UseGV:        s.UseGV,
				Option:       s.Option,
			},
			States:  states,
			GV:      gv,
			Windows: windows,
		})
	}

	duration, err := toTreeModel(doc.Duration.Trees, doc.Duration.PDF)
	if err != nil {
		return voice.Voice{}, fmt.Errorf("jsonvoice: duration: %w", err)
	}

	return voice.Voice{
		SamplingFrequency: doc.SamplingFrequency,
		FramePeriod:       doc.FramePeriod,
		NumStates:         doc.NumStates,
		Streams:           streams,
		Duration:          duration,
	}, nil
}

func toTreeModel(trees []docTree, pdf [][]docParam) (voice.TreeModel, error) {
	outTrees := make([]pattern.Tree, 0, len(trees))
	for i, t := range trees {
		gate, err := pattern.CompileAll(t.Gate)
		if err != nil {
			return voice.TreeModel{}, fmt.Errorf("tree %d gate: %w", i, err)
		}

		nodes := make([]pattern.Node, 0, len(t.Nodes))
		for j, n := range t.Nodes {
			ps, err := pattern.CompileAll(n.Patterns)
			if err != nil {
				return voice.TreeModel{}, fmt.Errorf("tree %d node %d: %w", i, j, err)
			}
			nodes = append(nodes, pattern.Node{
				Patterns: ps,
				Yes:      n.Yes,
				No:       n.No,
				Leaf:     n.Leaf,
				PDFIndex: n.PDFIndex,
			})
		}

		outTrees = append(outTrees, pattern.Tree{State: t.State, Gate: gate, Nodes: nodes})
	}

	outPDF := make([][]voice.ModelParameter, 0, len(pdf))
	for _, table := range pdf {
		row := make([]voice.ModelParameter, 0, len(table))
		for _, p := range table {
			mp := voice.ModelParameter{
				Means: append([]float64(nil), p.Means...),
				Vars:  append([]float64(nil), p.Vars...),
			}
			if p.MSD != nil {
				msd := *p.MSD
				mp.MSD = &msd
			}
			row = append(row, mp)
		}
		outPDF = append(outPDF, row)
	}

	return voice.TreeModel{Trees: outTrees, PDF: outPDF}, nil
}
