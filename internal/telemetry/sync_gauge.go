package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

type Int64WithAttributes struct {
	value int64
	attrs attribute.Set
}

// Int64SyncGauge is an observable gauge whose values are pushed by the caller
// and reported on every collection, one series per attribute set.
type Int64SyncGauge struct {
	gauge         api.Int64ObservableGauge
	mutex         *sync.RWMutex
	attrsValueMap map[string]*Int64WithAttributes
}

func NewInt64SyncGauge(meter api.Meter, name string, options ...api.Int64ObservableGaugeOption) (*Int64SyncGauge, error) {
	mutex := &sync.RWMutex{}
	attrsValueMap := make(map[string]*Int64WithAttributes)
	callback := func(ctx context.Context, observer api.Int64Observer) error {
		mutex.RLock()
		defer mutex.RUnlock()
		for _, entry := range attrsValueMap {
			observer.Observe(entry.value, api.WithAttributeSet(entry.attrs))
		}
		return nil
	}
	options = append(options, api.WithInt64Callback(callback))
	gauge, err := meter.Int64ObservableGauge(name, options...)
	if err != nil {
		return nil, err
	}
	return &Int64SyncGauge{gauge, mutex, attrsValueMap}, nil
}

func encodeAttrs(attr []attribute.KeyValue) (string, attribute.Set) {
	attrs := attribute.NewSet(attr...)
	return attrs.Encoded(attribute.DefaultEncoder()), attrs
}

func (g *Int64SyncGauge) Set(value int64, attr ...attribute.KeyValue) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	key, attrs := encodeAttrs(attr)
	g.attrsValueMap[key] = &Int64WithAttributes{value, attrs}
}

// SetMax sets the series to value unless it already holds a larger one.
// Sequences are delivered out of order, so the gauge tracks the highest seen.
func (g *Int64SyncGauge) SetMax(value int64, attr ...attribute.KeyValue) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	key, attrs := encodeAttrs(attr)
	if cur, ok := g.attrsValueMap[key]; ok && cur.value >= value {
		return
	}
	g.attrsValueMap[key] = &Int64WithAttributes{value, attrs}
}

// Value returns the current value of the series identified by attr.
func (g *Int64SyncGauge) Value(attr ...attribute.KeyValue) (int64, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	key, _ := encodeAttrs(attr)
	entry, ok := g.attrsValueMap[key]
	if !ok {
		return 0, false
	}
	return entry.value, true
}
