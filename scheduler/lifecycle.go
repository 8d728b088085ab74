package scheduler

import "go.uber.org/zap"

// Stop closes the work queue and returns at once. Submit fails from now on,
// workers return after their current step and the tasks left behind are abandoned.
// Unlike Shutdown it may be called from inside a task's Step.
func (p *Pool) Stop() {
	p.works.close()
}

// Shutdown stops the pool and waits for its workers. It is idempotent and safe for
// concurrent use. It must not be called from inside a task's Step: the calling
// worker would wait for itself. Use Stop there.
//
// Sequence:
// 1) close the work queue; Submit fails from now on
// 2) wait for every worker to return from its current step
// 3) drain the tasks left in the queue and abandon them
//
// Tasks yielding during 2) cannot be re-enqueued and are abandoned immediately.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.Stop()
		p.workers.Wait()
		p.abandonLeft()
		p.logger.Debug("pool stopped")
	})
}

// abandonLeft drains the closed work queue and abandons what it held.
func (p *Pool) abandonLeft() {
	left := p.works.drain()
	for _, t := range left {
		p.abandon(t)
	}
	if len(left) > 0 {
		p.logger.Warn("tasks abandoned at shutdown", zap.Int("tasks", len(left)))
	}
}
