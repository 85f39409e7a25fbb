package otel

import otelMetric "go.opentelemetry.io/otel/metric"

const (
	clientMeterPrefix = "fetch.client."
	httpMeterPrefix   = "fetch.http."
)

type allMeters struct {
	client clientMeters
	http   httpMeters
	body   bodyMeters
}

// clientMeters track the whole Client.Fetch call, from the request to the closing of the response body.
type clientMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

// httpMeters track each sent HTTP request, including redirects.
type httpMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

type bodyMeters struct {
	duration otelMetric.Float64Histogram
	size     otelMetric.Int64Counter
}

func newMeters(meter otelMetric.Meter) *allMeters {
	return &allMeters{
		client: clientMeters{
			inFlight: upDownCounter(meter, clientMeterPrefix+"request.in_flight", "Fetch client: in flight requests."),
			duration: histogram(meter, clientMeterPrefix+"request.duration", "Fetch client: requests duration, including the response body.", "ms"),
		},
		http: httpMeters{
			inFlight: upDownCounter(meter, httpMeterPrefix+"request.in_flight", "HTTP request: in flight requests."),
			duration: histogram(meter, httpMeterPrefix+"request.duration", "HTTP request: response headers received duration.", "ms"),
		},
		body: bodyMeters{
			duration: histogram(meter, clientMeterPrefix+"response.body.duration", "Fetch client: response body read duration.", "ms"),
			size:     counter(meter, clientMeterPrefix+"response.body.size", "Fetch client: decoded response body size.", "By"),
		},
	}
}

func upDownCounter(meter otelMetric.Meter, name, desc string) otelMetric.Int64UpDownCounter {
	return mustInstrument(meter.Int64UpDownCounter(name, otelMetric.WithDescription(desc)))
}

func counter(meter otelMetric.Meter, name, desc string, unit string) otelMetric.Int64Counter {
	return mustInstrument(meter.Int64Counter(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func histogram(meter otelMetric.Meter, name, desc string, unit string) otelMetric.Float64Histogram {
	return mustInstrument(meter.Float64Histogram(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
