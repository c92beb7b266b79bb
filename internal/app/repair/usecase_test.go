package repair

import (
	"context"
	"errors"
	"testing"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
)

func TestStart_RegistersBuilderOnAlliedFoundation(t *testing.T) {
	f := newFixture(t)
	site := f.site(1, false)

	resp, err := f.uc.Start(context.Background(), StartRequest{Entity: f.actor, Target: site})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if resp.Target != site || resp.Range.Max != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if target, ok := f.builder.Target(); !ok || target != site {
		t.Fatalf("expected builder target %v, got %v (%v)", site, target, ok)
	}
	if len(f.sched.active) != 1 {
		t.Fatalf("expected one work timer, got %d", len(f.sched.active))
	}
	if f.ser.calls != 1 {
		t.Fatalf("expected one serialized call, got %d", f.ser.calls)
	}
}

func TestStart_RejectsEnemyAndCompleteTargets(t *testing.T) {
	f := newFixture(t)
	targets := map[string]entity.ID{
		"enemy":    f.site(2, false),
		"complete": f.site(1, true),
	}
	for name, site := range targets {
		_, err := f.uc.Start(context.Background(), StartRequest{Entity: f.actor, Target: site})
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("%s: expected ErrRejected, got %v", name, err)
		}
		if f.builder.Targeted() != site {
			t.Fatalf("%s: expected targeted %v to be kept", name, site)
		}
	}
	if len(f.sched.active) != 0 {
		t.Fatalf("expected no timers after rejection, got %d", len(f.sched.active))
	}
}

func TestStart_Errors(t *testing.T) {
	f := newFixture(t)
	site := f.site(1, false)
	plain := f.reg.Create()

	cases := []struct {
		name string
		req  StartRequest
		want error
	}{
		{name: "missing target", req: StartRequest{Entity: f.actor}, want: ErrInvalidRequest},
		{name: "self target", req: StartRequest{Entity: f.actor, Target: f.actor}, want: ErrInvalidRequest},
		{name: "unknown actor", req: StartRequest{Entity: 999, Target: site}, want: ports.ErrNotFound},
		{name: "unknown target", req: StartRequest{Entity: f.actor, Target: 999}, want: ports.ErrNotFound},
		{name: "not a builder", req: StartRequest{Entity: plain, Target: site}, want: ErrNotBuilder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.uc.Start(context.Background(), tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStop_ReportsPreviousTargetAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	site := f.site(1, false)
	if _, err := f.uc.Start(context.Background(), StartRequest{Entity: f.actor, Target: site}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	resp, err := f.uc.Stop(context.Background(), StopRequest{Entity: f.actor})
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if !resp.WasActive || resp.LastTarget != site {
		t.Fatalf("unexpected stop response %+v", resp)
	}
	if len(f.sched.active) != 0 {
		t.Fatalf("expected timer cancelled")
	}

	again, err := f.uc.Stop(context.Background(), StopRequest{Entity: f.actor})
	if err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
	if again.WasActive {
		t.Fatalf("expected idle builder on second stop")
	}
}

func TestStop_PropagatesSerializerError(t *testing.T) {
	wantErr := errors.New("loop stopped")
	f := newFixture(t)
	f.uc.Serializer = failingSerializer{err: wantErr}
	if _, err := f.uc.Stop(context.Background(), StopRequest{Entity: f.actor}); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if _, err := f.uc.Start(context.Background(), StartRequest{Entity: f.actor, Target: f.site(1, false)}); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if _, ok := f.builder.Target(); ok {
		t.Fatalf("builder must not start when the loop rejects work")
	}
}

type failingSerializer struct {
	err error
}

func (s failingSerializer) Exec(context.Context, func()) error { return s.err }
