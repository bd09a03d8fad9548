// Package engine orchestrates the whole planner: it builds the
// collision/avoidance/internal-guide fields, seeds contact points per
// mesh, runs the dropper, and renders every layer, wiring the phase
// barriers and the atomic max-filled-layer bookkeeping the rest of
// this module assumes. It is the library's single public entry point.
package engine

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/latticeforge/treesupport/pkg/drop"
	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/render"
	"github.com/latticeforge/treesupport/pkg/seed"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

// Progress receives weighted progress updates during Run. fraction
// is in [0, 1] and cumulative across phases within the call.
type Progress interface {
	Update(fraction float64)
}

// ProgressWeights controls how much of the overall progress bar each
// phase consumes, defaulting to the original implementation's
// collision-dominated 50/1/1 split.
type ProgressWeights struct {
	Collision float64
	Dropdown  float64
	Areas     float64
}

// DefaultProgressWeights is the original 50/1/1 split: collision
// construction dwarfs the dropper and renderer in practice.
var DefaultProgressWeights = ProgressWeights{Collision: 50, Dropdown: 1, Areas: 1}

// Engine runs the planner against a slicedata.SliceDataStorage.
type Engine struct {
	Logger   *log.Logger
	Progress Progress
	Weights  ProgressWeights

	// progressMu serialises calls into Progress.Update: the renderer
	// and field builders report from multiple worker goroutines, and
	// Progress implementations are not assumed to be safe for
	// concurrent calls on their own.
	progressMu sync.Mutex
}

// New returns an Engine with a default logger and the original
// progress-weight split; override the returned Engine's fields before
// calling Run to customise either.
func New() *Engine {
	return &Engine{
		Logger:  log.Default(),
		Weights: DefaultProgressWeights,
	}
}

// Run plans tree supports when support_tree_enable is set globally or
// on any mesh, seeding contact points only from the meshes whose own
// setting enables it, and writes the result back into storage's
// output slots. Cancellation is cooperative: ctx
// is only checked at the phase boundaries listed in the concurrency
// model, never mid-operation.
func (e *Engine) Run(ctx context.Context, storage slicedata.SliceDataStorage) error {
	runID := uuid.New()
	logger := e.logger()
	logger.Printf("treesupport run %s: starting", runID)

	global := storage.GlobalConfig()
	layerCount := storage.LayerCount()

	anyEnabled := global.SupportTreeEnable
	for m := 0; m < storage.MeshCount(); m++ {
		if storage.MeshSupportTreeEnabled(m) {
			anyEnabled = true
		}
	}
	if !anyEnabled || layerCount == 0 {
		storage.SetGenerated(false)
		logger.Printf("treesupport run %s: no mesh requests tree support, nothing to do", runID)
		return nil
	}

	if err := ctxErr(ctx); err != nil {
		return err
	}

	machMin, machMax := storage.MachineBounds()
	border := field.BuildMachineVolumeBorder(global, machMin, machMax, logger)
	p := field.NewParams(global, layerCount)

	weightTotal := e.Weights.Collision + e.Weights.Dropdown + e.Weights.Areas
	if weightTotal <= 0 {
		weightTotal = 1
	}

	if err := ctxErr(ctx); err != nil {
		return err
	}
	collision := field.BuildCollision(p, border, func(l int) geom.Polygons {
		return storage.LayerOutlines(l, false)
	}, func(done, total int) {
		e.report(e.Weights.Collision / weightTotal * fraction(done, total))
	})
	logger.Printf("treesupport run %s: collision field built (%d samples x %d layers)", runID, p.RSamples, layerCount)

	if err := ctxErr(ctx); err != nil {
		return err
	}
	avoidance := field.BuildAvoidance(p, collision)

	if err := ctxErr(ctx); err != nil {
		return err
	}
	guide := field.BuildInternalGuide(p, avoidance, collision)
	logger.Printf("treesupport run %s: avoidance and internal guide fields built", runID)

	if err := ctxErr(ctx); err != nil {
		return err
	}
	seeds := e.seedAllMeshes(storage, p, layerCount, collision)

	if err := ctxErr(ctx); err != nil {
		return err
	}
	fields := drop.Fields{Collision: collision, Avoidance: avoidance, InternalGuide: guide}
	layers := drop.Run(p, global, layerCount, seeds, fields, func(done, total int) {
		e.report(e.Weights.Collision/weightTotal + e.Weights.Dropdown/weightTotal*fraction(done, total))
	})
	logger.Printf("treesupport run %s: dropper finished", runID)

	if err := ctxErr(ctx); err != nil {
		return err
	}
	e.renderAll(storage, p, global, layers, collision, weightTotal)
	storage.SetGenerated(true)
	logger.Printf("treesupport run %s: done", runID)
	return nil
}

// seedAllMeshes seeds contact points independently for every mesh
// with tree support enabled and folds them together per layer, the
// same upsert-merge rule the dropper uses on descent.
func (e *Engine) seedAllMeshes(storage slicedata.SliceDataStorage, p field.Params, layerCount int, collision field.Field) []*treenode.Layer {
	merged := make([]*treenode.Layer, layerCount)
	collision0 := func(l int) geom.Polygons {
		if l < 0 || l >= len(collision[0]) {
			return nil
		}
		return collision[0][l]
	}
	for m := 0; m < storage.MeshCount(); m++ {
		if !storage.MeshSupportTreeEnabled(m) {
			continue
		}
		cfg := storage.MeshConfig(m)
		bboxMin, bboxMax := storage.MeshBoundingBox(m)
		meshIdx := m
		meshSeeds := seed.Contact(p, cfg, bboxMin, bboxMax, layerCount, p.TopDistanceLayers,
			func(l int) geom.Polygons { return storage.OverhangAreas(meshIdx, l) },
			collision0,
		)
		for l, layer := range meshSeeds {
			if layer == nil {
				continue
			}
			if merged[l] == nil {
				merged[l] = treenode.NewLayer()
			}
			for _, n := range layer.All() {
				merged[l].Upsert(n)
			}
		}
	}
	return merged
}

// renderAll renders every non-empty layer concurrently, one goroutine
// per logical CPU, and writes results back into storage.
func (e *Engine) renderAll(storage slicedata.SliceDataStorage, p field.Params, cfg slicedata.Config, layers []*treenode.Layer, collision field.Field, weightTotal float64) {
	circle := render.BranchCircle(p.BaseRadius)
	layerCount := len(layers)

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	layerCh := make(chan int, layerCount)
	total := 0
	for l := 0; l < layerCount; l++ {
		if layers[l] != nil && layers[l].Len() > 0 {
			layerCh <- l
			total++
		}
	}
	close(layerCh)

	var done int32
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range layerCh {
				rl := render.RenderLayer(p, cfg, l, layers[l].All(), circle,
					func(ll int) geom.Polygons {
						if ll < 0 || ll >= len(collision[0]) {
							return nil
						}
						return collision[0][ll]
					},
					func(ll int) geom.Polygons { return storage.LayerOutlines(ll, false) },
				)
				writeLayerOutput(storage, cfg, l, rl)
				if !rl.Support.Empty() || !rl.Roof.Empty() {
					storage.SetMaxFilledLayer(l)
				}
				n := atomic.AddInt32(&done, 1)
				e.report(e.Weights.Collision/weightTotal + e.Weights.Dropdown/weightTotal + e.Weights.Areas/weightTotal*fraction(int(n), total))
			}
		}()
	}
	wg.Wait()
}

func writeLayerOutput(storage slicedata.SliceDataStorage, cfg slicedata.Config, l int, rl render.Layer) {
	var parts []slicedata.InfillPart
	if !rl.Support.Empty() {
		parts = append(parts, slicedata.InfillPart{
			Outline:   rl.Support,
			LineWidth: cfg.SupportLineWidth,
			WallCount: cfg.SupportTreeWallCount,
		})
	}
	storage.SetSupportInfillParts(l, parts)
	storage.SetSupportRoof(l, rl.Roof)
	storage.SetSupportBottom(l, rl.Floor)
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

func (e *Engine) report(fraction float64) {
	if e.Progress == nil {
		return
	}
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.Progress.Update(fraction)
}

func fraction(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(done) / float64(total)
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
