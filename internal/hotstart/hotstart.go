// Package hotstart persists and restores a routing-state snapshot,
// letting a later run resume from where an earlier one left off instead
// of cold-starting every node and link at its initial condition
// (spec.md §4.5).
//
// Grounded on the teacher's Task.Stop rollback pattern (restore-on-exit
// via defer) for the snapshot/restore shape, and on its internal/config
// loader for the atomic temp-file-then-rename write discipline used when
// persisting process state to disk.
package hotstart

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/project"
)

// formatVersion is the leading 4-byte tag every hot-start file carries;
// readers reject a mismatching version outright (spec.md §6).
const formatVersion int32 = 1

var byteOrder = binary.LittleEndian

// NodeState is the minimal per-node routing state a hot-start file
// carries, per spec.md §4.5.
type NodeState struct {
	Depth         float64
	Volume        float64
	PondedVolume  float64
	PollutantConc []float64
}

// LinkState is the minimal per-link routing state a hot-start file
// carries.
type LinkState struct {
	Flow          float64
	Depth         float64
	PollutantConc []float64
}

// Snapshot is a full routing-state capture: one NodeState per node and
// one LinkState per link, in project index order, plus the solver
// identifier it was captured under.
type Snapshot struct {
	RunTag      string // uuid.New().String(), set by Save; useful for correlating multiple save files
	SolverModel string
	Nodes       []NodeState
	Links       []LinkState
}

// topologyHash summarizes the object counts and routing method a
// snapshot is only valid against, per spec.md §4.5's "reject if the
// topology hash mismatches current project".
func topologyHash(p *project.Project, solverModel string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d", solverModel, p.NumNodes(), p.NumLinks(), p.NumSubcatchments(), p.NumPollutants())
	return h.Sum64()
}

// Save captures the current node/link routing state and writes it
// atomically: data lands in a temp file beside path first, then is
// renamed over path, so a crash mid-write never leaves a torn file
// (spec.md §4.5 "Atomic write").
func Save(path string, p *project.Project, solverModel string) (*Snapshot, error) {
	snap := &Snapshot{
		RunTag:      uuid.NewString(),
		SolverModel: solverModel,
		Nodes:       make([]NodeState, len(p.Nodes)),
		Links:       make([]LinkState, len(p.Links)),
	}
	for i, n := range p.Nodes {
		snap.Nodes[i] = NodeState{
			Depth:         n.Depth,
			Volume:        n.Volume,
			PondedVolume:  n.PondedVolume,
			PollutantConc: append([]float64(nil), n.PollutantConc...),
		}
	}
	for i, l := range p.Links {
		snap.Links[i] = LinkState{
			Flow:          l.Flow,
			Depth:         l.Depth,
			PollutantConc: append([]float64(nil), l.PollutantConc...),
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".hotstart-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp hot-start file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := writeSnapshot(tmp, snap, topologyHash(p, solverModel)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close temp hot-start file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("rename hot-start file into place: %w", err)
	}
	return snap, nil
}

func writeSnapshot(f *os.File, snap *Snapshot, hash uint64) error {
	if err := binary.Write(f, byteOrder, formatVersion); err != nil {
		return err
	}
	if err := binary.Write(f, byteOrder, hash); err != nil {
		return err
	}
	if err := writeString(f, snap.RunTag); err != nil {
		return err
	}
	if err := writeString(f, snap.SolverModel); err != nil {
		return err
	}
	if err := binary.Write(f, byteOrder, int32(len(snap.Nodes))); err != nil {
		return err
	}
	for _, n := range snap.Nodes {
		if err := writeNodeState(f, n); err != nil {
			return err
		}
	}
	if err := binary.Write(f, byteOrder, int32(len(snap.Links))); err != nil {
		return err
	}
	for _, l := range snap.Links {
		if err := writeLinkState(f, l); err != nil {
			return err
		}
	}
	return nil
}

func writeString(f *os.File, s string) error {
	if err := binary.Write(f, byteOrder, int32(len(s))); err != nil {
		return err
	}
	_, err := f.WriteString(s)
	return err
}

func writeNodeState(f *os.File, n NodeState) error {
	for _, v := range []float64{n.Depth, n.Volume, n.PondedVolume} {
		if err := binary.Write(f, byteOrder, v); err != nil {
			return err
		}
	}
	return writeConcs(f, n.PollutantConc)
}

func writeLinkState(f *os.File, l LinkState) error {
	for _, v := range []float64{l.Flow, l.Depth} {
		if err := binary.Write(f, byteOrder, v); err != nil {
			return err
		}
	}
	return writeConcs(f, l.PollutantConc)
}

func writeConcs(f *os.File, concs []float64) error {
	if err := binary.Write(f, byteOrder, int32(len(concs))); err != nil {
		return err
	}
	for _, c := range concs {
		if err := binary.Write(f, byteOrder, c); err != nil {
			return err
		}
	}
	return nil
}

// Load validates the format version and topology compatibility, then
// returns the stored snapshot. It does not mutate p; callers apply the
// snapshot via Apply once validated, matching spec.md §4.5's two usage
// modes (initial condition vs periodic save) which apply at different
// lifecycle phases.
func Load(path string, p *project.Project, solverModel string) (*Snapshot, errs.Code) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.ErrFileOpen
	}
	defer f.Close()

	var version int32
	if err := binary.Read(f, byteOrder, &version); err != nil {
		return nil, errs.ErrFileRead
	}
	if version != formatVersion {
		return nil, errs.ErrInvalidFile
	}
	var hash uint64
	if err := binary.Read(f, byteOrder, &hash); err != nil {
		return nil, errs.ErrFileRead
	}
	if hash != topologyHash(p, solverModel) {
		return nil, errs.ErrInvalidFile
	}

	runTag, err1 := readString(f)
	model, err2 := readString(f)
	if err1 != nil || err2 != nil {
		return nil, errs.ErrFileRead
	}

	var nNodes int32
	if err := binary.Read(f, byteOrder, &nNodes); err != nil {
		return nil, errs.ErrFileRead
	}
	nodes := make([]NodeState, nNodes)
	for i := range nodes {
		ns, err := readNodeState(f)
		if err != nil {
			return nil, errs.ErrFileRead
		}
		nodes[i] = ns
	}

	var nLinks int32
	if err := binary.Read(f, byteOrder, &nLinks); err != nil {
		return nil, errs.ErrFileRead
	}
	links := make([]LinkState, nLinks)
	for i := range links {
		ls, err := readLinkState(f)
		if err != nil {
			return nil, errs.ErrFileRead
		}
		links[i] = ls
	}

	return &Snapshot{RunTag: runTag, SolverModel: model, Nodes: nodes, Links: links}, errs.OK
}

func readString(f *os.File) (string, error) {
	var n int32
	if err := binary.Read(f, byteOrder, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := f.Read(buf); err != nil && n > 0 {
		return "", err
	}
	return string(buf), nil
}

func readNodeState(f *os.File) (NodeState, error) {
	var n NodeState
	vals := make([]float64, 3)
	for i := range vals {
		if err := binary.Read(f, byteOrder, &vals[i]); err != nil {
			return n, err
		}
	}
	n.Depth, n.Volume, n.PondedVolume = vals[0], vals[1], vals[2]
	concs, err := readConcs(f)
	if err != nil {
		return n, err
	}
	n.PollutantConc = concs
	return n, nil
}

func readLinkState(f *os.File) (LinkState, error) {
	var l LinkState
	vals := make([]float64, 2)
	for i := range vals {
		if err := binary.Read(f, byteOrder, &vals[i]); err != nil {
			return l, err
		}
	}
	l.Flow, l.Depth = vals[0], vals[1]
	concs, err := readConcs(f)
	if err != nil {
		return l, err
	}
	l.PollutantConc = concs
	return l, nil
}

func readConcs(f *os.File) ([]float64, error) {
	var n int32
	if err := binary.Read(f, byteOrder, &n); err != nil {
		return nil, err
	}
	concs := make([]float64, n)
	for i := range concs {
		if err := binary.Read(f, byteOrder, &concs[i]); err != nil {
			return nil, err
		}
	}
	return concs, nil
}

// Apply writes a validated snapshot's state into the project's node and
// link arrays, used either as the pre-start initial condition or to
// resume mid-run after a periodic save, per spec.md §4.5.
func Apply(p *project.Project, snap *Snapshot) errs.Code {
	if len(snap.Nodes) != len(p.Nodes) || len(snap.Links) != len(p.Links) {
		return errs.ErrInvalidFile
	}
	for i, ns := range snap.Nodes {
		n := p.Nodes[i]
		n.Depth = ns.Depth
		n.Volume = ns.Volume
		n.PondedVolume = ns.PondedVolume
		n.PollutantConc = append([]float64(nil), ns.PollutantConc...)
	}
	for i, ls := range snap.Links {
		l := p.Links[i]
		l.Flow = ls.Flow
		l.Depth = ls.Depth
		l.PollutantConc = append([]float64(nil), ls.PollutantConc...)
	}
	return errs.OK
}
