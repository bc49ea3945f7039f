package render

import "github.com/ecopia-map/globe_renderer/internal/data"

// Scene graph notification sink. Implementations own the graphical representation of the records;
// the reconciler only tells them what enters and leaves the scene.
type Backend interface {
	AddNode(r *NodeRecord)
	RemoveNode(r *NodeRecord)
	AddWay(r *WayRecord)
	RemoveWay(r *WayRecord)
	AddArea(r *AreaRecord)
	RemoveArea(r *AreaRecord)
	AddRelationArea(r *RelationAreaRecord)
	RemoveRelationArea(r *RelationAreaRecord)
	RemoveAll()
}

// Counters of backend notifications
type Stats struct {
	Added   int
	Removed int
	Cleared int
}

// Backend keeping the live records in memory, used by tests and headless runs
type RecordingBackend struct {
	Nodes         map[data.FeatureId]*NodeRecord
	Ways          map[data.FeatureId]*WayRecord
	Areas         map[data.FeatureId]*AreaRecord
	RelationAreas map[data.FeatureId]*RelationAreaRecord

	stats Stats
}

func NewRecordingBackend() *RecordingBackend {
	b := &RecordingBackend{}
	b.reset()
	return b
}

func (b *RecordingBackend) reset() {
	b.Nodes = make(map[data.FeatureId]*NodeRecord)
	b.Ways = make(map[data.FeatureId]*WayRecord)
	b.Areas = make(map[data.FeatureId]*AreaRecord)
	b.RelationAreas = make(map[data.FeatureId]*RelationAreaRecord)
}

func (b *RecordingBackend) AddNode(r *NodeRecord) {
	b.Nodes[r.Id()] = r
	b.stats.Added++
}

func (b *RecordingBackend) RemoveNode(r *NodeRecord) {
	delete(b.Nodes, r.Id())
	b.stats.Removed++
}

func (b *RecordingBackend) AddWay(r *WayRecord) {
	b.Ways[r.Id()] = r
	b.stats.Added++
}

func (b *RecordingBackend) RemoveWay(r *WayRecord) {
	delete(b.Ways, r.Id())
	b.stats.Removed++
}

func (b *RecordingBackend) AddArea(r *AreaRecord) {
	b.Areas[r.Id()] = r
	b.stats.Added++
}

func (b *RecordingBackend) RemoveArea(r *AreaRecord) {
	delete(b.Areas, r.Id())
	b.stats.Removed++
}

func (b *RecordingBackend) AddRelationArea(r *RelationAreaRecord) {
	b.RelationAreas[r.Id()] = r
	b.stats.Added++
}

func (b *RecordingBackend) RemoveRelationArea(r *RelationAreaRecord) {
	delete(b.RelationAreas, r.Id())
	b.stats.Removed++
}

func (b *RecordingBackend) RemoveAll() {
	b.reset()
	b.stats.Cleared++
}

// Number of live records
func (b *RecordingBackend) Len() int {
	return len(b.Nodes) + len(b.Ways) + len(b.Areas) + len(b.RelationAreas)
}

func (b *RecordingBackend) Stats() Stats {
	return b.stats
}

// Resets the notification counters, keeping the live records
func (b *RecordingBackend) ResetStats() {
	b.stats = Stats{}
}
