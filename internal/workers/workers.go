package workers

// Workers aggregates background workers so the composition root can start
// and stop them as one unit.
type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop shuts down every worker that supports it, in reverse start order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		if stopper, ok := w.workers[i].(Stopper); ok {
			stopper.Stop()
		}
	}
}
