package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

type replicateAction int

const (
	actionAdd replicateAction = iota + 1
	actionRemove
)

func (a replicateAction) String() string {
	if a == actionAdd {
		return "add"
	}
	return "remove"
}

type replicateJob struct {
	action replicateAction
	userID string
	fanID  string
	enqAt  time.Time
}

// FanReplicator 本地异步执行器，把关注关系冗余到粉丝表
type FanReplicator struct {
	fanRepo   repository.FanRepository
	ch        chan replicateJob
	metricsCh chan time.Duration
}

func NewFanReplicator(fanRepo repository.FanRepository, queueSize int) *FanReplicator {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &FanReplicator{fanRepo: fanRepo, ch: make(chan replicateJob, queueSize), metricsCh: make(chan time.Duration, 65536)}
}

// Start 启动 workers 个消费者，返回的 stop 会等待队列排空（最长到 ctx 结束）
func (r *FanReplicator) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-r.ch:
					r.apply(job)
				case <-stopCh:
					// 退出前处理完已入队的任务
					for {
						select {
						case job := <-r.ch:
							r.apply(job)
						default:
							return
						}
					}
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *FanReplicator) apply(job replicateJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch job.action {
	case actionAdd:
		err = r.fanRepo.Create(ctx, job.userID, job.fanID)
	case actionRemove:
		err = r.fanRepo.Delete(ctx, job.userID, job.fanID)
	}
	if err != nil {
		metrics.FanReplication.WithLabelValues("error").Inc()
		logger.Warn("fan replication failed",
			zap.String("action", job.action.String()),
			zap.String("user", job.userID),
			zap.String("fan", job.fanID),
			zap.Error(err))
		return
	}
	metrics.FanReplication.WithLabelValues("ok").Inc()
	if !job.enqAt.IsZero() {
		select {
		case r.metricsCh <- time.Since(job.enqAt):
		default:
		}
	}
}

func (r *FanReplicator) EnqueueAdd(userID, fanID string) {
	r.enqueue(replicateJob{action: actionAdd, userID: userID, fanID: fanID, enqAt: time.Now()})
}

func (r *FanReplicator) EnqueueRemove(userID, fanID string) {
	r.enqueue(replicateJob{action: actionRemove, userID: userID, fanID: fanID, enqAt: time.Now()})
}

func (r *FanReplicator) enqueue(job replicateJob) {
	select {
	case r.ch <- job:
	default:
		metrics.FanReplication.WithLabelValues("dropped").Inc()
		logger.Warn("replicator queue full, drop "+job.action.String(),
			zap.String("user", job.userID), zap.String("fan", job.fanID))
	}
}

// Metrics 返回复制落地耗时的只读通道（每处理一条发送一次 duration）。
func (r *FanReplicator) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (r *FanReplicator) QueueLen() int { return len(r.ch) }
