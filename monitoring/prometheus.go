package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/mezonai/powchain/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type chainPromMetrics struct {
	blockHeight      prometheus.Gauge
	blockTime        prometheus.Histogram
	miningIterations prometheus.Histogram
	blockSizeBytes   prometheus.Histogram
	txInBlock        prometheus.Histogram
	utxoScanSeconds  prometheus.Histogram
	panicCount       prometheus.Counter
}

func newChainPromMetrics() *chainPromMetrics {
	return &chainPromMetrics{
		blockHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "powchain_block_height",
				Help: "Height of the current tip",
			},
		),
		blockTime: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "powchain_block_time",
				Help: "Seconds spent sealing and persisting a block",
			},
		),
		miningIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "powchain_mining_iterations",
				Help:    "Nonces tried before a block satisfied the difficulty predicate",
				Buckets: prometheus.ExponentialBuckets(16, 4, 10),
			},
		),
		blockSizeBytes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "powchain_block_size_bytes",
				Help: "Encoded block size in bytes",
			},
		),
		txInBlock: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "powchain_tx_in_block",
				Help: "Number of tx in block",
			},
		),
		utxoScanSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "powchain_utxo_scan_seconds",
				Help: "Duration of a full-chain unspent output scan",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "powchain_panic_count",
				Help: "Panics recovered in background goroutines",
			},
		),
	}
}

var (
	chainMetrics *chainPromMetrics
	initOnce     sync.Once
)

// InitMetrics registers the collectors with the default registry. Recorders
// call it lazily, so explicit use is only needed to register before serving.
func InitMetrics() {
	initOnce.Do(func() {
		chainMetrics = newChainPromMetrics()
	})
}

func metrics() *chainPromMetrics {
	InitMetrics()
	return chainMetrics
}

func RegisterMetrics(mux *http.ServeMux) {
	InitMetrics()
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func SetBlockHeight(blockHeight uint64) {
	metrics().blockHeight.Set(float64(blockHeight))
}

func RecordBlockTime(duration time.Duration) {
	metrics().blockTime.Observe(duration.Seconds())
}

func RecordMiningIterations(iterations uint64) {
	metrics().miningIterations.Observe(float64(iterations))
}

func RecordBlockSizeBytes(sizeBytes int) {
	metrics().blockSizeBytes.Observe(float64(sizeBytes))
}

func RecordTxInBlock(txCount int) {
	metrics().txInBlock.Observe(float64(txCount))
}

func RecordUTXOScan(duration time.Duration) {
	metrics().utxoScanSeconds.Observe(duration.Seconds())
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
