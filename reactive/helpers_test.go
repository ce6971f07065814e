package reactive_test

import (
	"testing"

	"github.com/delaneyj/turnsignal/reactive"
	"github.com/delaneyj/turnsignal/tick"
)

type reported struct {
	err  error
	info string
}

type recorder struct {
	errs []reported
}

func (r *recorder) onError(err error, vm reactive.Instance, info string) {
	r.errs = append(r.errs, reported{err: err, info: info})
}

func newSystem(t *testing.T) (*reactive.ReactiveSystem, *tick.Loop, *recorder) {
	t.Helper()
	loop := tick.NewLoop()
	rec := &recorder{}
	rs := reactive.CreateReactiveSystem(loop, rec.onError)
	return rs, loop, rec
}

func newSyncSystem(t *testing.T) (*reactive.ReactiveSystem, *recorder) {
	t.Helper()
	rs, _, rec := newSystem(t)
	rs.Configure(reactive.Config{Async: false})
	return rs, rec
}

func readKey(obj *reactive.Object, key string) reactive.Getter {
	return func() (any, error) {
		return obj.Get(key), nil
	}
}
