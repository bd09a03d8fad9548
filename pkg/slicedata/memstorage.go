package slicedata

import (
	"sync/atomic"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// MemStorage is an in-memory SliceDataStorage used by package tests
// and the demonstration binary. It holds every layer's geometry as
// plain slices; nothing in it is lazy.
type MemStorage struct {
	Layers    []MemLayer
	Meshes    []MemMesh
	Global    Config
	MachMin   geom.Point
	MachMax   geom.Point
	generated bool

	maxFilledLayer int64 // atomic

	infillParts [][]InfillPart
	roofs       []geom.Polygons
	bottoms     []geom.Polygons
}

// MemLayer is one layer's model outline.
type MemLayer struct {
	Outlines       geom.Polygons
	HelperOutlines geom.Polygons
}

// MemMesh is one mesh's per-layer overhang data and configuration.
type MemMesh struct {
	Config    Config
	BBoxMin   geom.Point
	BBoxMax   geom.Point
	Overhangs []geom.Polygons // indexed by layer
}

// NewMemStorage allocates a MemStorage with layerCount empty layers.
func NewMemStorage(layerCount int, global Config, machMin, machMax geom.Point) *MemStorage {
	return &MemStorage{
		Layers:         make([]MemLayer, layerCount),
		Global:         global,
		MachMin:        machMin,
		MachMax:        machMax,
		maxFilledLayer: -1,
		infillParts:    make([][]InfillPart, layerCount),
		roofs:          make([]geom.Polygons, layerCount),
		bottoms:        make([]geom.Polygons, layerCount),
	}
}

func (m *MemStorage) ensureOutputSlots() {
	if len(m.roofs) != len(m.Layers) {
		m.roofs = make([]geom.Polygons, len(m.Layers))
	}
	if len(m.bottoms) != len(m.Layers) {
		m.bottoms = make([]geom.Polygons, len(m.Layers))
	}
	if len(m.infillParts) != len(m.Layers) {
		m.infillParts = make([][]InfillPart, len(m.Layers))
	}
}

func (m *MemStorage) LayerCount() int { return len(m.Layers) }
func (m *MemStorage) MeshCount() int  { return len(m.Meshes) }

func (m *MemStorage) MeshSupportTreeEnabled(mesh int) bool {
	return m.Meshes[mesh].Config.SupportTreeEnable
}

func (m *MemStorage) MeshConfig(mesh int) Config { return m.Meshes[mesh].Config }
func (m *MemStorage) GlobalConfig() Config       { return m.Global }

func (m *MemStorage) MeshBoundingBox(mesh int) (min, max geom.Point) {
	return m.Meshes[mesh].BBoxMin, m.Meshes[mesh].BBoxMax
}

func (m *MemStorage) MachineBounds() (min, max geom.Point) { return m.MachMin, m.MachMax }

func (m *MemStorage) LayerOutlines(l int, includeHelperParts bool) geom.Polygons {
	if l < 0 || l >= len(m.Layers) {
		return nil
	}
	if !includeHelperParts {
		return m.Layers[l].Outlines
	}
	return append(m.Layers[l].Outlines.Clone(), m.Layers[l].HelperOutlines...)
}

func (m *MemStorage) OverhangAreas(mesh, l int) geom.Polygons {
	oh := m.Meshes[mesh].Overhangs
	if l < 0 || l >= len(oh) {
		return nil
	}
	return oh[l]
}

func (m *MemStorage) SetSupportInfillParts(l int, parts []InfillPart) {
	m.ensureOutputSlots()
	if l < 0 || l >= len(m.infillParts) {
		return
	}
	m.infillParts[l] = parts
}

func (m *MemStorage) SetSupportRoof(l int, roof geom.Polygons) {
	m.ensureOutputSlots()
	if l < 0 || l >= len(m.roofs) {
		return
	}
	m.roofs[l] = roof
}

func (m *MemStorage) SetSupportBottom(l int, bottom geom.Polygons) {
	m.ensureOutputSlots()
	if l < 0 || l >= len(m.bottoms) {
		return
	}
	m.bottoms[l] = bottom
}

func (m *MemStorage) SetMaxFilledLayer(l int) {
	for {
		old := atomic.LoadInt64(&m.maxFilledLayer)
		if int64(l) <= old {
			return
		}
		if atomic.CompareAndSwapInt64(&m.maxFilledLayer, old, int64(l)) {
			return
		}
	}
}

func (m *MemStorage) MaxFilledLayer() int {
	return int(atomic.LoadInt64(&m.maxFilledLayer))
}

func (m *MemStorage) SetGenerated(generated bool) { m.generated = generated }

// Generated reports the value last passed to SetGenerated.
func (m *MemStorage) Generated() bool { return m.generated }

// SupportInfillParts returns the infill parts recorded for layer l.
func (m *MemStorage) SupportInfillParts(l int) []InfillPart {
	if l < 0 || l >= len(m.infillParts) {
		return nil
	}
	return m.infillParts[l]
}

// SupportRoof returns the roof polygons recorded for layer l.
func (m *MemStorage) SupportRoof(l int) geom.Polygons {
	if l < 0 || l >= len(m.roofs) {
		return nil
	}
	return m.roofs[l]
}

// SupportBottom returns the floor polygons recorded for layer l.
func (m *MemStorage) SupportBottom(l int) geom.Polygons {
	if l < 0 || l >= len(m.bottoms) {
		return nil
	}
	return m.bottoms[l]
}

var _ SliceDataStorage = (*MemStorage)(nil)
