package otel

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MetricFactory creates prefixed instruments on a meter taken from the global
// meter provider.
type MetricFactory struct {
	meter  metric.Meter
	prefix string
}

// NewFactory creates a metric factory over the global meter named meterName.
// Each of its methods creates its instrument immediately.
func NewFactory(meterName, prefix string) *MetricFactory {
	f := &MetricFactory{
		meter:  otel.Meter(meterName),
		prefix: prefix,
	}
	return f
}

// name prefixes the metric name with the factory's prefix
func (f *MetricFactory) name(suffix string) string {
	if f.prefix == "" {
		return suffix
	}
	return f.prefix + "." + suffix
}

// Int64Counter creates a counter and stores it in target
func (f *MetricFactory) Int64Counter(target *metric.Int64Counter, name string, options ...metric.Int64CounterOption) {
	fullName := f.name(name)
	counter, err := f.meter.Int64Counter(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create counter %s: %v", fullName, err))
	}
	*target = counter
}

// Int64UpDownCounter creates an up-down counter and stores it in target
func (f *MetricFactory) Int64UpDownCounter(target *metric.Int64UpDownCounter, name string, options ...metric.Int64UpDownCounterOption) {
	fullName := f.name(name)
	counter, err := f.meter.Int64UpDownCounter(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create up-down counter %s: %v", fullName, err))
	}
	*target = counter
}

// Float64Histogram creates a histogram and stores it in target
func (f *MetricFactory) Float64Histogram(target *metric.Float64Histogram, name string, options ...metric.Float64HistogramOption) {
	fullName := f.name(name)
	histogram, err := f.meter.Float64Histogram(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create histogram %s: %v", fullName, err))
	}
	*target = histogram
}

// Int64Histogram creates a histogram and stores it in target
func (f *MetricFactory) Int64Histogram(target *metric.Int64Histogram, name string, options ...metric.Int64HistogramOption) {
	fullName := f.name(name)
	histogram, err := f.meter.Int64Histogram(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create histogram %s: %v", fullName, err))
	}
	*target = histogram
}

// Float64Counter creates a counter and stores it in target
func (f *MetricFactory) Float64Counter(target *metric.Float64Counter, name string, options ...metric.Float64CounterOption) {
	fullName := f.name(name)
	counter, err := f.meter.Float64Counter(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create counter %s: %v", fullName, err))
	}
	*target = counter
}

// Float64UpDownCounter creates an up-down counter and stores it in target
func (f *MetricFactory) Float64UpDownCounter(target *metric.Float64UpDownCounter, name string, options ...metric.Float64UpDownCounterOption) {
	fullName := f.name(name)
	counter, err := f.meter.Float64UpDownCounter(fullName, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create up-down counter %s: %v", fullName, err))
	}
	*target = counter
}
