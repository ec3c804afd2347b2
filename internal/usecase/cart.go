package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/google/uuid"
)

// CartState is the snapshot observers receive after every commit.
type CartState struct {
	Items  []domain.CartLine `json:"items"`
	IsOpen bool              `json:"isOpen"`
}

// CartTotals is the money summary derived from the current lines.
// Prices are the snapshots captured at add-time, never live catalog values.
type CartTotals struct {
	Subtotal              float64 `json:"subtotal"`
	Shipping              float64 `json:"shipping"`
	Tax                   float64 `json:"tax"`
	Total                 float64 `json:"total"`
	FreeShippingRemaining float64 `json:"freeShippingRemaining"`
}

// Observer is called synchronously after a mutation commits, outside the
// store lock, so callbacks may call back into the store.
type Observer func(CartState)

type CartConfig struct {
	// Delay before an AddItem auto-close fires. Zero means the 3s default.
	AutoCloseDelay time.Duration

	// When false (the default) every AddItem arms an independent close
	// timer and each one fires unconditionally: adding several items in a
	// row re-opens the cart and the earliest timer still slams it shut.
	// When true, an explicit close cancels all pending timers and a new
	// AddItem replaces the previous timer instead of stacking one.
	CancelPendingOnClose bool

	ShippingThreshold float64
	ShippingCost      float64
	TaxRate           float64
}

const defaultAutoCloseDelay = 3 * time.Second

func (c CartConfig) autoCloseDelay() time.Duration {
	if c.AutoCloseDelay <= 0 {
		return defaultAutoCloseDelay
	}
	return c.AutoCloseDelay
}

// CartStore owns the cart: the only mutator of its line items and the
// transient open/closed flag. Items are restored from persistence at
// construction and written back after every item mutation; the flag is
// never persisted and always starts closed.
type CartStore struct {
	mu     sync.Mutex
	items  []domain.CartLine
	isOpen bool

	subIDs []string
	subs   map[string]Observer

	timers []*closeTimer

	cfg    CartConfig
	repo   CartPersistence
	events CartEvents
	log    *slog.Logger

	saveCh chan []domain.CartLine
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewCartStore restores items from repo and starts the background
// persister. It never fails: a load error or corrupt snapshot just means
// an empty cart. events may be nil.
func NewCartStore(repo CartPersistence, events CartEvents, cfg CartConfig, log *slog.Logger) *CartStore {
	if log == nil {
		log = slog.Default()
	}
	s := &CartStore{
		subs:   map[string]Observer{},
		cfg:    cfg,
		repo:   repo,
		events: events,
		log:    log,
		saveCh: make(chan []domain.CartLine, 1),
		done:   make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	items, err := repo.Load(ctx)
	if err != nil {
		log.Warn("cart restore failed, starting empty", "err", err)
		items = nil
	}
	for _, l := range items {
		if l.Quantity > 0 {
			s.items = append(s.items, l)
		}
	}

	s.wg.Add(1)
	go s.persistLoop()
	return s
}

// Close stops the auto-close timers and the persister, flushing any
// pending snapshot first.
func (s *CartStore) Close() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
}

// AddItem merges into the line matching (product id, color, size) or
// appends a new line with quantity 1. It opens the cart and arms a
// deferred close. Never fails; callers are expected to have checked
// InStock already.
func (s *CartStore) AddItem(p domain.Product, sel domain.Selection) {
	s.mu.Lock()
	key := domain.KeyOf(p.ID, sel)
	if i := s.indexOfLocked(key); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, domain.CartLine{
			Product:       p,
			Quantity:      1,
			SelectedColor: sel.Color,
			SelectedSize:  sel.Size,
		})
	}
	s.isOpen = true
	s.armAutoCloseLocked()
	s.enqueueSaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(CartEventMsg{Type: EventItemAdded, ProductID: p.ID, Color: sel.Color, Size: sel.Size, Quantity: 1})
	s.notify(snap)
}

// RemoveItem drops the line matching the key exactly. Absent key is a
// no-op, not an error.
func (s *CartStore) RemoveItem(productID string, sel domain.Selection) {
	s.mu.Lock()
	i := s.indexOfLocked(domain.KeyOf(productID, sel))
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.enqueueSaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(CartEventMsg{Type: EventItemRemoved, ProductID: productID, Color: sel.Color, Size: sel.Size})
	s.notify(snap)
}

// UpdateQuantity sets the matching line's quantity to an absolute value.
// quantity <= 0 removes the line; an absent key is a no-op.
func (s *CartStore) UpdateQuantity(productID string, quantity int, sel domain.Selection) {
	if quantity <= 0 {
		s.RemoveItem(productID, sel)
		return
	}
	s.mu.Lock()
	i := s.indexOfLocked(domain.KeyOf(productID, sel))
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	s.enqueueSaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(CartEventMsg{Type: EventQuantityUpdated, ProductID: productID, Color: sel.Color, Size: sel.Size, Quantity: quantity})
	s.notify(snap)
}

// Clear empties the cart. The open/closed flag is left alone.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.enqueueSaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(CartEventMsg{Type: EventCleared})
	s.notify(snap)
}

// SetOpen sets the visibility flag directly. Closing under the
// cancel-pending policy also disarms any scheduled auto-close.
func (s *CartStore) SetOpen(open bool) {
	s.mu.Lock()
	s.isOpen = open
	if !open && s.cfg.CancelPendingOnClose {
		s.stopTimersLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *CartStore) Toggle() {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	if !s.isOpen && s.cfg.CancelPendingOnClose {
		s.stopTimersLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// TotalItems returns the sum of quantities across all lines.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.items {
		total += l.Quantity
	}
	return total
}

// TotalPrice returns the sum of price x quantity using snapshot prices.
func (s *CartStore) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// ItemCount returns the quantity of the matching line, or 0.
func (s *CartStore) ItemCount(productID string, sel domain.Selection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(domain.KeyOf(productID, sel)); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Snapshot returns a copy of the current state.
func (s *CartStore) Snapshot() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Totals derives the money summary: flat shipping below the free-shipping
// threshold and a percentage tax on the subtotal. An empty cart is all
// zeros.
func (s *CartStore) Totals() CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.subtotalLocked()
	if len(s.items) == 0 {
		return CartTotals{FreeShippingRemaining: s.cfg.ShippingThreshold}
	}
	t := CartTotals{Subtotal: sub}
	if sub < s.cfg.ShippingThreshold {
		t.Shipping = s.cfg.ShippingCost
		t.FreeShippingRemaining = s.cfg.ShippingThreshold - sub
	}
	t.Tax = sub * s.cfg.TaxRate
	t.Total = sub + t.Shipping + t.Tax
	return t
}

// Subscribe registers an observer and returns its id. Observers run
// synchronously, in subscription order, after each commit.
func (s *CartStore) Subscribe(fn Observer) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.subs[id] = fn
	s.subIDs = append(s.subIDs, id)
	return id
}

func (s *CartStore) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return
	}
	delete(s.subs, id)
	for i, v := range s.subIDs {
		if v == id {
			s.subIDs = append(s.subIDs[:i], s.subIDs[i+1:]...)
			break
		}
	}
}

func (s *CartStore) indexOfLocked(key domain.LineKey) int {
	for i, l := range s.items {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func (s *CartStore) subtotalLocked() float64 {
	total := 0.0
	for _, l := range s.items {
		total += l.Subtotal()
	}
	return total
}

func (s *CartStore) snapshotLocked() CartState {
	items := make([]domain.CartLine, len(s.items))
	copy(items, s.items)
	return CartState{Items: items, IsOpen: s.isOpen}
}

// closeTimer wraps a pending auto-close so the registry can identify it.
// The inner timer is only touched under the store mutex.
type closeTimer struct {
	t *time.Timer
}

func (s *CartStore) armAutoCloseLocked() {
	if s.cfg.CancelPendingOnClose {
		s.stopTimersLocked()
	}
	ct := &closeTimer{}
	ct.t = time.AfterFunc(s.cfg.autoCloseDelay(), func() { s.autoClose(ct) })
	s.timers = append(s.timers, ct)
}

func (s *CartStore) autoClose(ct *closeTimer) {
	s.mu.Lock()
	armed := false
	for i, v := range s.timers {
		if v == ct {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			armed = true
			break
		}
	}
	// Under the cancel-pending policy a timer that lost the race with an
	// explicit close stays silent. The default policy closes regardless.
	if s.cfg.CancelPendingOnClose && !armed {
		s.mu.Unlock()
		return
	}
	s.isOpen = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *CartStore) stopTimersLocked() {
	for _, ct := range s.timers {
		ct.t.Stop()
	}
	s.timers = nil
}

// enqueueSaveLocked hands the persister a snapshot, latest wins. It never
// blocks: a stale queued snapshot is replaced by the newer one.
func (s *CartStore) enqueueSaveLocked() {
	items := make([]domain.CartLine, len(s.items))
	copy(items, s.items)
	for {
		select {
		case s.saveCh <- items:
			return
		default:
			select {
			case <-s.saveCh:
			default:
			}
		}
	}
}

func (s *CartStore) persistLoop() {
	defer s.wg.Done()
	for {
		select {
		case items := <-s.saveCh:
			s.save(items)
		case <-s.done:
			select {
			case items := <-s.saveCh:
				s.save(items)
			default:
			}
			return
		}
	}
}

func (s *CartStore) save(items []domain.CartLine) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, items); err != nil {
		s.log.Warn("cart snapshot write failed", "items", len(items), "err", err)
	}
}

func (s *CartStore) publish(msg CartEventMsg) {
	if s.events == nil {
		return
	}
	msg.At = time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, msg); err != nil {
			s.log.Debug("cart event publish failed", "type", msg.Type, "err", err)
		}
	}()
}

func (s *CartStore) notify(snap CartState) {
	s.mu.Lock()
	fns := make([]Observer, 0, len(s.subIDs))
	for _, id := range s.subIDs {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
