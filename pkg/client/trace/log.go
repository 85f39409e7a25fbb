package trace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"
)

// LogTracer writes one line for each stage of a fetch to the writer.
// A fetch with redirects writes a START and DONE line for each round trip.
// A failed fetch ends with a FAIL line, a successful fetch with a BODY line.
func LogTracer(wr io.Writer) Factory {
	var lastID uint64
	return func(ctx context.Context, _ *http.Request) (context.Context, *ClientTrace) {
		l := &fetchLog{wr: wr, id: atomic.AddUint64(&lastID, 1), fetchStart: time.Now()}
		t := &ClientTrace{}
		t.ConnectStart = l.connectStart
		t.GotConn = l.gotConn
		t.HTTPRequestStart = l.requestStart
		t.HTTPRequestDone = l.requestDone
		t.RequestProcessed = l.processed
		t.BodyClosed = l.bodyClosed
		return ctx, t
	}
}

type fetchLog struct {
	wr         io.Writer
	id         uint64
	req        *http.Request
	fetchStart time.Time
	connStart  time.Time
	start      time.Time
	done       time.Time
}

func (l *fetchLog) connectStart(_, _ string) {
	l.connStart = time.Now()
}

func (l *fetchLog) gotConn(info httptrace.GotConnInfo) {
	conn := fmt.Sprintf("new conn | %s", time.Since(l.connStart))
	switch {
	case info.Reused && info.WasIdle:
		conn = "reused conn"
	case info.Reused:
		conn = fmt.Sprintf("reused conn (was idle=%s)", info.IdleTime)
	}
	l.write("CONN ", conn)
}

func (l *fetchLog) requestStart(req *http.Request) {
	l.req = req
	l.start = time.Now()
	l.write("START")
}

func (l *fetchLog) requestDone(res *http.Response, err error) {
	l.done = time.Now()
	took := l.done.Sub(l.start).String()
	if err != nil {
		l.write("DONE ", "0", took, "error="+err.Error())
		return
	}
	l.write("DONE ", fmt.Sprintf("%d", res.StatusCode), took)
}

func (l *fetchLog) processed(_ *http.Response, err error) {
	if err != nil {
		l.write("FAIL ", time.Since(l.fetchStart).String(), err.Error())
	}
}

func (l *fetchLog) bodyClosed(readBytes int64, err error) {
	parts := []string{fmt.Sprintf("%dB", readBytes), time.Since(l.done).String()}
	if err != nil {
		parts = append(parts, "error="+err.Error())
	}
	l.write("BODY ", parts...)
}

func (l *fetchLog) write(stage string, parts ...string) {
	line := fmt.Sprintf(`FETCH[%04d] %s`, l.id, stage)
	if l.req != nil {
		line += fmt.Sprintf(` %s "%s"`, l.req.Method, l.req.URL.String())
	}
	for _, p := range parts {
		line += " | " + p
	}
	_, _ = fmt.Fprintln(l.wr, line)
}
