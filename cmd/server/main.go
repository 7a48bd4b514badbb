package main

import (
	"flag"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/config"
	"github.com/hruan122/lootbox-backend/internal/draw"
	"github.com/hruan122/lootbox-backend/internal/pool"
)

const maxMultiDraw = 100

// registry holds the live pool for each pool name, built lazily from
// config and dropped when the watcher reports a file change.
type registry struct {
	loader *config.Loader
	log    *zap.Logger

	mu    sync.Mutex
	pools map[string]*poolEntry
}

// poolEntry is one served pool: its engine plus the server-held pity
// state. Pity counts are per pool here; a real deployment would key
// them per player.
type poolEntry struct {
	mu     sync.Mutex
	pool   *pool.Pool
	engine *draw.Engine
	pity   *draw.Pity
}

func newRegistry(loader *config.Loader, log *zap.Logger) *registry {
	return &registry{
		loader: loader,
		log:    log,
		pools:  make(map[string]*poolEntry),
	}
}

// get returns the live entry for a pool, building it on first use.
func (r *registry) get(name string) (*poolEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.pools[name]; ok {
		return e, nil
	}
	cfg, err := r.loader.Load(name)
	if err != nil {
		return nil, err
	}
	p, err := config.BuildPool(cfg)
	if err != nil {
		return nil, err
	}
	e := &poolEntry{
		pool:   p,
		engine: draw.NewEngine(p, nil),
		pity:   config.BuildPity(cfg),
	}
	r.pools[name] = e
	r.log.Info("pool loaded",
		zap.String("pool", name),
		zap.String("version", cfg.Version),
		zap.Int("cards", len(cfg.Cards)))
	return e, nil
}

// invalidate drops every built pool so the next request rebuilds from
// fresh config. Limited-card stock restarts with the rebuild; stock is
// in-memory only.
func (r *registry) invalidate(path string) {
	r.mu.Lock()
	r.pools = make(map[string]*poolEntry)
	r.mu.Unlock()
	r.loader.Invalidate()
	r.log.Info("config changed, pools invalidated", zap.String("path", path))
}

type drawResult struct {
	Receipt string `json:"receipt"`
	Name    string `json:"name"`
	Rarity  int    `json:"rarity,omitempty"`
	Nothing bool   `json:"nothing,omitempty"`
	Remain  *int64 `json:"remain,omitempty"`
}

func toResult(c *card.Card) drawResult {
	res := drawResult{
		Receipt: uuid.NewString(),
		Name:    c.Name(),
		Nothing: c.IsNothing(),
	}
	if !c.IsNothing() {
		res.Rarity = int(c.Rarity())
		if c.IsLimited() {
			n := c.RemainCount()
			res.Remain = &n
		}
	}
	return res
}

// drawN runs n draws under the entry's pity state, serialized because
// pity counts are not concurrency-safe.
func (e *poolEntry) drawN(n int) ([]drawResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]drawResult, 0, n)
	for i := 0; i < n; i++ {
		c, err := e.engine.DrawWithPity(e.pity)
		if err != nil {
			return nil, err
		}
		out = append(out, toResult(c))
	}
	return out, nil
}

func main() {
	var (
		addr     = flag.String("addr", ":8080", "listen address")
		baseDir  = flag.String("config", "./config", "config base directory")
		poolList = flag.String("pools", "standard", "comma-separated pools to watch")
		interval = flag.Duration("watch-interval", 5*time.Second, "config poll interval")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	loader := config.NewLoader(*baseDir)
	reg := newRegistry(loader, log)

	watched := loader.WatchPaths(strings.Split(*poolList, ",")...)
	watcher := config.NewWatcher(watched, *interval, reg.invalidate)
	watcher.Start()
	defer watcher.Stop()

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/pools/:pool/draw", func(c *gin.Context) {
		e, err := reg.get(c.Param("pool"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		results, err := e.drawN(1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, results[0])
	})

	router.POST("/pools/:pool/draw/:n", func(c *gin.Context) {
		n, err := strconv.Atoi(c.Param("n"))
		if err != nil || n <= 0 || n > maxMultiDraw {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be in 1..100"})
			return
		}
		e, err := reg.get(c.Param("pool"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		results, err := e.drawN(n)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	})

	router.GET("/pools/:pool/probabilities", func(c *gin.Context) {
		e, err := reg.get(c.Param("pool"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		entries, nothing := e.pool.Probabilities()
		c.JSON(http.StatusOK, gin.H{"cards": entries, "nothing": nothing})
	})

	router.POST("/pools/:pool/simulate", func(c *gin.Context) {
		draws, err := strconv.Atoi(c.DefaultQuery("draws", "10000"))
		if err != nil || draws <= 0 || draws > 1_000_000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "draws must be in 1..1000000"})
			return
		}
		cfg, err := reg.loader.Load(c.Param("pool"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		// simulate against a throwaway pool so served stock is untouched
		p, err := config.BuildPool(cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		engine := draw.NewEngine(p, nil)
		c.JSON(http.StatusOK, engine.SimulateFrequencies(draws))
	})

	log.Info("listening", zap.String("addr", *addr))
	if err := router.Run(*addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
