package game

import "testing"

// assertPathMatchesState checks that a path is bound exactly while attacking.
func assertPathMatchesState(t *testing.T, inv *Invader) {
	t.Helper()
	hasPath := inv.AttackPath() != nil
	if hasPath != (inv.State() == StateAttacking) {
		t.Fatalf("%s: state=%s but hasPath=%v", slotLabel(inv.GridSlot()), inv.State(), hasPath)
	}
}

func TestInvader_StartsParked(t *testing.T) {
	inv := NewInvader(GridSlot{Row: 2, Col: 3}, 10, 20)
	if inv.State() != StateInFormation || !inv.IsAlive() || inv.Kind() != KindInvader {
		t.Fatalf("unexpected initial invader: state=%s alive=%v kind=%s", inv.State(), inv.IsAlive(), inv.Kind())
	}
	assertPathMatchesState(t, inv)
}

func TestInvader_FullCycle(t *testing.T) {
	inv := NewInvader(GridSlot{Row: 4, Col: 1}, 100, 100)
	p := DefaultPathGenerator().Create(NewRandom(1))
	p.Start(100, 100)

	inv.Launch(p, 7)
	if inv.State() != StateAttacking || inv.WaveID() != 7 {
		t.Fatalf("after launch: state=%s wave=%d", inv.State(), inv.WaveID())
	}
	assertPathMatchesState(t, inv)

	inv.SetPosition(140, 300)
	inv.BeginReturn()
	if inv.State() != StateReturning {
		t.Fatalf("expected returning, got %s", inv.State())
	}
	assertPathMatchesState(t, inv)
	if x, y := inv.Position(); x != 140 || y != 300 {
		t.Fatalf("BeginReturn should keep the last position, got (%.0f,%.0f)", x, y)
	}

	inv.Land(100, 100)
	if inv.State() != StateInFormation {
		t.Fatalf("expected in_formation, got %s", inv.State())
	}
	assertPathMatchesState(t, inv)
	if inv.WaveID() != 7 {
		t.Fatal("landing should keep the last wave id")
	}
}

func TestInvader_SetStateDropsPath(t *testing.T) {
	inv := NewInvader(GridSlot{}, 0, 0)
	inv.Launch(DefaultPathGenerator().Create(NewRandom(2)), 1)
	inv.SetState(StateReturning)
	assertPathMatchesState(t, inv)
	inv.SetState(StateInFormation)
	assertPathMatchesState(t, inv)
}

func TestInvader_SetAttackPathRequiresAttacking(t *testing.T) {
	inv := NewInvader(GridSlot{}, 0, 0)
	inv.SetAttackPath(DefaultPathGenerator().Create(NewRandom(3)))
	if inv.AttackPath() != nil {
		t.Fatal("parked invader must not hold a path")
	}

	inv.Launch(DefaultPathGenerator().Create(NewRandom(3)), 1)
	next := DefaultPathGenerator().Create(NewRandom(4))
	inv.SetAttackPath(next)
	if inv.AttackPath() != next {
		t.Fatal("attacking invader should take the new path")
	}
	assertPathMatchesState(t, inv)
}

func TestInvader_SetStateAttackingNeedsPath(t *testing.T) {
	inv := NewInvader(GridSlot{}, 0, 0)
	inv.SetState(StateAttacking)
	if inv.State() != StateInFormation {
		t.Fatalf("attacking without a path should be refused, got %s", inv.State())
	}
	assertPathMatchesState(t, inv)
}

func TestInvader_LaunchOnlyFromFormation(t *testing.T) {
	inv := NewInvader(GridSlot{}, 0, 0)
	first := DefaultPathGenerator().Create(NewRandom(5))
	inv.Launch(first, 1)

	inv.Launch(DefaultPathGenerator().Create(NewRandom(6)), 2)
	if inv.AttackPath() != first || inv.WaveID() != 1 {
		t.Fatalf("relaunch mid-dive should be ignored, got wave %d", inv.WaveID())
	}

	inv.BeginReturn()
	inv.Launch(DefaultPathGenerator().Create(NewRandom(7)), 3)
	if inv.State() != StateReturning || inv.WaveID() != 1 {
		t.Fatalf("returning invader should not launch, got %s wave %d", inv.State(), inv.WaveID())
	}
	assertPathMatchesState(t, inv)

	parked := NewInvader(GridSlot{Col: 1}, 0, 0)
	parked.Launch(nil, 4)
	if parked.State() != StateInFormation {
		t.Fatal("launch without a path should be ignored")
	}
}

func TestInvader_KillIsSoft(t *testing.T) {
	inv := NewInvader(GridSlot{Row: 1}, 5, 5)
	inv.Launch(DefaultPathGenerator().Create(NewRandom(4)), 2)
	inv.Kill()
	if inv.IsAlive() {
		t.Fatal("expected dead")
	}
	if inv.State() != StateAttacking {
		t.Fatal("kill should not touch flight state")
	}
}

func TestInvader_Move(t *testing.T) {
	inv := NewInvader(GridSlot{}, 1, 2)
	inv.Move(3, -4)
	if x, y := inv.Position(); x != 4 || y != -2 {
		t.Fatalf("expected (4,-2), got (%.0f,%.0f)", x, y)
	}
}

func TestFlightState_String(t *testing.T) {
	cases := map[FlightState]string{
		StateInFormation: "in_formation",
		StateAttacking:   "attacking",
		StateReturning:   "returning",
		FlightState(9):   "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Fatalf("%d: expected %q, got %q", int(s), want, s.String())
		}
	}
}
