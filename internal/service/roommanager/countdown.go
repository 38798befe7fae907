package roommanager

import (
	"context"
	"log"
	"time"

	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

// countdown — состояние обратного отсчёта одного вопроса.
// Указатель на countdown служит идентичностью таймера: тик от устаревшего
// таймера распознаётся сравнением указателей под mu комнаты.
type countdown struct {
	remaining int
	duration  int
	cancel    context.CancelFunc
}

// startCountdownLocked запускает обратный отсчёт для текущего вопроса.
// Предыдущий отсчёт, если он есть, отменяется, поэтому на комнату
// всегда приходится не более одного активного таймера.
// Вызывается с удержанным mu.
func (r *Room) startCountdownLocked(durationSec int) {
	r.cancelCountdownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	cd := &countdown{
		remaining: durationSec,
		duration:  durationSec,
		cancel:    cancel,
	}
	r.countdown = cd

	log.Printf("[Room %s] Countdown started: %d sec", r.Code, durationSec)
	go r.runCountdown(ctx, cd)
}

// cancelCountdownLocked останавливает активный обратный отсчёт.
// Вызывается с удержанным mu.
func (r *Room) cancelCountdownLocked() {
	if r.countdown == nil {
		return
	}
	r.countdown.cancel()
	r.countdown = nil
}

// runCountdown тикает раз в TickInterval до отмены или истечения времени.
func (r *Room) runCountdown(ctx context.Context, cd *countdown) {
	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.handleTick(cd) {
				return
			}
		}
	}
}

// handleTick обрабатывает один тик обратного отсчёта.
// Возвращает false, когда отсчёт завершён или тик пришёл от устаревшего
// таймера: фаза могла смениться между срабатыванием тикера и захватом mu.
func (r *Room) handleTick(cd *countdown) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.countdown != cd || r.phase != PhaseQuestion {
		return false
	}

	cd.remaining--
	r.broadcastLocked(ws.TickMessage{Type: ws.TICK, Remaining: cd.remaining})

	if cd.remaining <= 0 {
		r.completeQuestionLocked()
		return false
	}
	return true
}
