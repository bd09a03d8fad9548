package field

import (
	"runtime"
	"sync"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// smoothIterations is how many cleanup passes Smooth runs after each
// erosion step in the avoidance propagation.
const smoothIterations = 5

// BuildAvoidance propagates the collision field bottom-up into the
// avoidance field: avoidance[s][0] is collision[s][0], and each
// higher layer is the previous layer eroded by the maximum per-layer
// move distance, unioned with that layer's own collision. Each
// sample's layer loop is a serial dependency chain, but the samples
// themselves are independent, so they run concurrently.
func BuildAvoidance(p Params, collision Field) Field {
	avoidance := newField(p.RSamples, p.LayerCount)

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > p.RSamples {
		workers = p.RSamples
	}
	sampleCh := make(chan int, p.RSamples)
	for s := 0; s < p.RSamples; s++ {
		sampleCh <- s
	}
	close(sampleCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range sampleCh {
				propagateSample(p, collision, avoidance, s)
			}
		}()
	}
	wg.Wait()

	return avoidance
}

func propagateSample(p Params, collision, avoidance Field, s int) {
	if p.LayerCount == 0 {
		return
	}
	avoidance[s][0] = collision[s][0]
	for l := 1; l < p.LayerCount; l++ {
		eroded := geom.Offset(avoidance[s][l-1], -p.MaxMoveDistance, geom.JoinRound)
		eroded = geom.Smooth(eroded, smoothIterations)
		avoidance[s][l] = geom.Union(eroded, collision[s][l])
	}
}

// BuildInternalGuide derives the internal guide field from the
// avoidance and collision fields: avoidance minus collision at every
// (sample, layer) cell. This needs no further propagation, so it
// simply maps over every cell.
func BuildInternalGuide(p Params, avoidance, collision Field) Field {
	guide := newField(p.RSamples, p.LayerCount)
	for s := 0; s < p.RSamples; s++ {
		for l := 0; l < p.LayerCount; l++ {
			guide[s][l] = geom.Difference(avoidance[s][l], collision[s][l])
		}
	}
	return guide
}
