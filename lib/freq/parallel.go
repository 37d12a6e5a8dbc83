package freq

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/xlog"
)

var ErrNilPool = errors.New("[freq] nil worker pool")

// Source is an input opened lazily by the worker counting it.
type Source struct {
	Open func() (io.ReadCloser, error)
	Name string
}

func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ParallelCounter counts the sources on a worker pool.
//
//	source 1 ──► worker ──► private tree ─┐
//	source 2 ──► worker ──► private tree ─┼─► (mutex) merge ──► total
//	source n ──► worker ──► private tree ─┘
//
// A tree is never shared between the workers, only the
// merge into the total tree is serialized.
type ParallelCounter struct {
	pool     *ants.Pool
	logger   xlog.XLogger
	treeOpts []tree.BSTOpt
}

type ParallelCounterOpt func(*ParallelCounter)

func WithParallelCounterLogger(logger xlog.XLogger) ParallelCounterOpt {
	return func(pc *ParallelCounter) {
		pc.logger = logger
	}
}

// WithParallelCounterTreeOpts applies to the private trees.
func WithParallelCounterTreeOpts(opts ...tree.BSTOpt) ParallelCounterOpt {
	return func(pc *ParallelCounter) {
		pc.treeOpts = append(pc.treeOpts, opts...)
	}
}

func NewParallelCounter(pool *ants.Pool, opts ...ParallelCounterOpt) (*ParallelCounter, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	pc := &ParallelCounter{pool: pool}
	for _, o := range opts {
		if o != nil {
			o(pc)
		}
	}
	return pc, nil
}

// Count accumulates every source into total and blocks until all
// the submitted sources are done. The sources not yet submitted
// when ctx is done are skipped.
func (pc *ParallelCounter) Count(ctx context.Context, total tree.BST, sources ...Source) error {
	if pc == nil || pc.pool == nil {
		return ErrNilPool
	}
	if total == nil {
		return ErrNilTree
	}

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		merr error
	)
	appendErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		merr = multierr.Append(merr, err)
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			appendErr(infra.WrapErrorStackWithMessage(err, "[freq] count cancelled"))
			break
		}
		wg.Add(1)
		err := pc.pool.Submit(func() {
			defer wg.Done()
			local := tree.NewBST(pc.treeOpts...)
			defer local.Dispose()

			start := time.Now()
			err := pc.countSource(ctx, local, src)
			if err == nil {
				lock.Lock()
				err = Merge(total, local)
				lock.Unlock()
			}
			if err != nil {
				appendErr(infra.WrapErrorStackWithMessage(err, "[freq] count "+src.Name))
				pc.logError(ctx, err, src.Name)
				return
			}
			if pc.logger != nil {
				pc.logger.DebugContext(ctx, "[freq] source counted",
					zap.String("source", src.Name),
					zap.Int64("keys", local.Len()),
					zap.Duration("in", time.Since(start)),
				)
			}
		})
		if err != nil {
			wg.Done()
			appendErr(infra.WrapErrorStackWithMessage(err, "[freq] submit "+src.Name))
			pc.logError(ctx, err, src.Name)
		}
	}
	wg.Wait()
	return merr
}

func (pc *ParallelCounter) countSource(ctx context.Context, local tree.BST, src Source) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	if src.Open == nil {
		return infra.NewErrorStack("[freq] source without opener")
	}
	rc, err := src.Open()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))
	return CountReader(local, rc)
}

func (pc *ParallelCounter) logError(ctx context.Context, err error, name string) {
	if pc.logger == nil {
		return
	}
	pc.logger.ErrorContext(ctx, err, "[freq] source count failed", zap.String("source", name))
}
