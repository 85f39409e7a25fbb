// Package trace extends the httptrace.ClientTrace and adds hooks for a fetch performed by the client.Client.
// A custom ClientTrace definition can be registered in the client.Client by the AndTrace method.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"
)

// Factory creates ClientTrace hooks for a request.
// It is called once per Client.Fetch call, before the request is sent.
type Factory func(ctx context.Context, request *http.Request) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing request.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the request begins. It includes redirects.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the response headers are received or an error occurred. It includes redirects.
	HTTPRequestDone func(response *http.Response, err error)
	// RequestProcessed is called when the Client.Fetch method returns.
	RequestProcessed func(response *http.Response, err error)
	// BodyClosed is called when the response body returned by Client.Fetch is closed.
	// The readBytes is the decoded body length.
	BodyClosed func(readBytes int64, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks from the old are called first.
// Copy of httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	tv := reflect.ValueOf(t).Elem()
	ov := reflect.ValueOf(old).Elem()
	structType := tv.Type()
	for i := 0; i < structType.NumField(); i++ {
		tf := tv.Field(i)
		hookType := tf.Type()
		if hookType.Kind() == reflect.Struct {
			// Embedded httptrace.ClientTrace
			composeStruct(tf, ov.Field(i))
			continue
		}
		if hookType.Kind() != reflect.Func {
			continue
		}
		composeFunc(tf, ov.Field(i))
	}
}

func composeStruct(tv, ov reflect.Value) {
	for i := 0; i < tv.NumField(); i++ {
		if tv.Field(i).Kind() == reflect.Func {
			composeFunc(tv.Field(i), ov.Field(i))
		}
	}
}

func composeFunc(tf, of reflect.Value) {
	if of.IsNil() {
		return
	}
	if tf.IsNil() {
		tf.Set(of)
		return
	}

	// Make a copy of tf for tf to call. (Otherwise it
	// creates a recursive call cycle and stack overflows)
	tfCopy := reflect.ValueOf(tf.Interface())

	// We need to call both tf and of in some order.
	newFunc := reflect.MakeFunc(tf.Type(), func(args []reflect.Value) []reflect.Value {
		of.Call(args)
		return tfCopy.Call(args)
	})
	tf.Set(newFunc)
}
