// Package location fans out device position updates to subscribers at a
// coarse cadence and remembers each device's latest position.
package location

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"campusmap/src/apperr"
	"campusmap/src/geo"
	"campusmap/src/types"
)

// Subscription is released with Cancel when its owner goes away. Cancel may be
// called more than once. Done is closed once the subscription ends, either by
// Cancel or because the device denied location access; Err then reports which.
type Subscription interface {
	Cancel()
	Done() <-chan struct{}
	Err() error
}

type Watcher interface {
	Watch(onUpdate func(types.GeoPoint)) (Subscription, error)
}

type Options struct {
	// An update is delivered when the device moved at least MinDistanceMeters
	// since the last delivery, or at most once per MinInterval otherwise.
	MinDistanceMeters float64
	MinInterval       time.Duration
	// TTL bounds how long a latest position, cadence state or a denial is
	// remembered after the device's last update.
	TTL time.Duration
}

func DefaultOptions() Options {
	return Options{MinDistanceMeters: 10, MinInterval: 5 * time.Second, TTL: 10 * time.Minute}
}

// cadence is the per-device delivery state. It lives in the TTL cache so that
// devices which stop publishing are forgotten.
type cadence struct {
	delivered *types.GeoPoint
	limiter   *rate.Limiter
}

// Hub keeps latest positions and cadence state in an expiring cache. Only
// devices with live subscriptions hold an entry in devices.
type Hub struct {
	opts   Options
	latest *cache.Cache
	now    func() time.Time

	mu      sync.Mutex
	devices map[string]map[uuid.UUID]*subscription
}

// NewHub returns a hub; zero fields of opts take their DefaultOptions value.
func NewHub(opts Options) *Hub {
	def := DefaultOptions()
	if opts.MinDistanceMeters <= 0 {
		opts.MinDistanceMeters = def.MinDistanceMeters
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = def.MinInterval
	}
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	return &Hub{
		opts:    opts,
		latest:  cache.New(opts.TTL, 2*opts.TTL),
		now:     time.Now,
		devices: make(map[string]map[uuid.UUID]*subscription),
	}
}

func deniedKey(deviceID string) string {
	return "denied:" + deviceID
}

func cadenceKey(deviceID string) string {
	return "cadence:" + deviceID
}

// cadenceLocked returns the device's cadence state and refreshes its expiry.
func (h *Hub) cadenceLocked(deviceID string) *cadence {
	key := cadenceKey(deviceID)
	if v, ok := h.latest.Get(key); ok {
		c := v.(*cadence)
		h.latest.SetDefault(key, c)
		return c
	}
	c := &cadence{limiter: rate.NewLimiter(rate.Every(h.opts.MinInterval), 1)}
	h.latest.SetDefault(key, c)
	return c
}

// Publish records p as the device's latest position and forwards it to the
// device's subscribers when the cadence allows. It reports whether the update
// was delivered.
func (h *Hub) Publish(deviceID string, p types.GeoPoint) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, apperr.Validation(err.Error()).WithOp("location.Publish")
	}

	h.latest.Delete(deniedKey(deviceID))
	h.latest.SetDefault(deviceID, p)

	h.mu.Lock()
	c := h.cadenceLocked(deviceID)
	allowed := c.limiter.AllowN(h.now(), 1)
	moved := c.delivered == nil ||
		geo.DistanceKm(*c.delivered, p)*1000 >= h.opts.MinDistanceMeters
	if !allowed && !moved {
		h.mu.Unlock()
		return false, nil
	}
	c.delivered = &p
	subs := h.devices[deviceID]
	callbacks := make([]func(types.GeoPoint), 0, len(subs))
	for _, sub := range subs {
		callbacks = append(callbacks, sub.onUpdate)
	}
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(p)
	}
	return true, nil
}

// Latest returns the most recent position published by the device.
func (h *Hub) Latest(deviceID string) (types.GeoPoint, bool) {
	v, ok := h.latest.Get(deviceID)
	if !ok {
		return types.GeoPoint{}, false
	}
	return v.(types.GeoPoint), true
}

// Deny records that the device refused location access. Its latest position
// and cadence are forgotten and its subscriptions end with a PermissionDenied
// error.
func (h *Hub) Deny(deviceID string) {
	h.latest.Delete(deviceID)
	h.latest.SetDefault(deniedKey(deviceID), true)

	h.mu.Lock()
	h.latest.Delete(cadenceKey(deviceID))
	subs := h.devices[deviceID]
	delete(h.devices, deviceID)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.end(apperr.PermissionDenied("location permission denied").WithOp("location.Deny"))
	}
}

func (h *Hub) Denied(deviceID string) bool {
	_, ok := h.latest.Get(deniedKey(deviceID))
	return ok
}

// Watch subscribes onUpdate to the device's delivered updates.
func (h *Hub) Watch(deviceID string, onUpdate func(types.GeoPoint)) (Subscription, error) {
	if h.Denied(deviceID) {
		return nil, apperr.PermissionDenied("location permission denied").WithOp("location.Watch")
	}

	sub := &subscription{
		hub:      h,
		deviceID: deviceID,
		id:       uuid.New(),
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	subs, ok := h.devices[deviceID]
	if !ok {
		subs = make(map[uuid.UUID]*subscription)
		h.devices[deviceID] = subs
	}
	subs[sub.id] = sub
	h.mu.Unlock()

	return sub, nil
}

// Subscribers returns the number of live subscriptions for the device.
func (h *Hub) Subscribers(deviceID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.devices[deviceID])
}

// Device binds the hub to one device as a Watcher.
func (h *Hub) Device(deviceID string) Watcher {
	return deviceWatcher{hub: h, deviceID: deviceID}
}

type deviceWatcher struct {
	hub      *Hub
	deviceID string
}

func (w deviceWatcher) Watch(onUpdate func(types.GeoPoint)) (Subscription, error) {
	return w.hub.Watch(w.deviceID, onUpdate)
}

type subscription struct {
	hub      *Hub
	deviceID string
	id       uuid.UUID
	onUpdate func(types.GeoPoint)

	once sync.Once
	done chan struct{}
	err  error
}

func (s *subscription) end(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

func (s *subscription) Cancel() {
	s.hub.mu.Lock()
	if subs, ok := s.hub.devices[s.deviceID]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.hub.devices, s.deviceID)
		}
	}
	s.hub.mu.Unlock()
	s.end(nil)
}

func (s *subscription) Done() <-chan struct{} {
	return s.done
}

// Err is nil until Done is closed, and nil after a plain Cancel.
func (s *subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}
