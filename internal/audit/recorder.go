package audit

/*
Файл recorder.go реализует буферизованную запись аудита консоли.

Ключевые особенности архитектуры:
- Non-blocking Logging: события уходят в канал и не тормозят обработку
  запроса, даже если Postgres сейчас медленный.
- Batching: события копятся в памяти и пишутся пакетом (Bulk Insert)
  по таймеру или при достижении лимита пачки.
- Drain Pattern & Graceful Shutdown: при остановке сервиса буфер
  вычитывается до конца и делается финальный flush — записи не теряются
  при штатном рестарте.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются записи аудита.
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Auditor — то, что видят сервисы: просто «зафиксируй событие».
type Auditor interface {
	Log(event Event)
}

// Nop — заглушка для тестов и конфигураций без аудита.
type Nop struct{}

func (Nop) Log(Event) {}

type Recorder struct {
	ch            chan Event
	repo          StorageInterface
	logger        *zap.Logger
	batchSize     int
	flushInterval time.Duration
	wg            sync.WaitGroup

	// Атомарный флаг (0 - открыт, 1 - закрыт): защита от Log после Stop
	isClosed int32
}

func NewRecorder(repo StorageInterface, logger *zap.Logger, bufferSize, batchSize int, flushInterval time.Duration) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 500 * time.Millisecond
	}
	return &Recorder{
		ch:            make(chan Event, bufferSize),
		repo:          repo,
		logger:        logger.Named("audit"),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

func (rec *Recorder) Start() {
	rec.wg.Add(1)
	go rec.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (rec *Recorder) Stop() {
	// 1. Сначала ставим флаг
	atomic.StoreInt32(&rec.isClosed, 1)

	// 2. Даем крошечную паузу, чтобы текущие Log успели проскочить
	time.Sleep(10 * time.Millisecond)

	// 3. Закрываем канал (Drain Pattern): воркер вычитает остатки,
	// сделает финальный flush и завершится.
	rec.logger.Info("stopping audit recorder: flushing buffer...")
	close(rec.ch)
	rec.wg.Wait()
	rec.logger.Info("audit recorder stopped gracefully")
}

func (rec *Recorder) Log(event Event) {
	// Убеждаемся, что таймстемп всегда проставлен
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&rec.isClosed) == 1 {
		rec.logger.Warn("audit event dropped: recorder is stopping", zap.String("action", event.Action))
		return
	}

	// Load Shedding: при переполненном буфере событие уходит хотя бы
	// в обычный лог, чтобы след не пропал совсем.
	select {
	case rec.ch <- event:
	default:
		rec.logger.Error("audit_buffer_overflow",
			zap.String("action", event.Action),
			zap.String("username", event.Username),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (rec *Recorder) worker() {
	defer rec.wg.Done()

	batch := make([]Event, 0, rec.batchSize)
	ticker := time.NewTicker(rec.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст на shutdown уже может быть закрыт
			if err := rec.repo.WriteBatch(context.Background(), batch); err != nil {
				rec.logger.Error("audit flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
	}

	for {
		select {
		case event, ok := <-rec.ch:
			if !ok {
				// Канал закрыт в Stop(): остатки уже вычитаны, финальный сброс
				flush()
				rec.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= rec.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
