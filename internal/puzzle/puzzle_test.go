package puzzle

import (
	"errors"
	"reflect"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{Level: 7, PieceCount: 9, RotationIncrement: 45, Seed: 294}
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical configs produced different puzzles")
	}
}

func TestGenerate_PieceCountFidelity(t *testing.T) {
	for _, n := range []int{1, 3, 7, 12, 22} {
		p, err := Generate(Config{Level: 1, PieceCount: n, RotationIncrement: 30, Seed: 42})
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Pieces) != n {
			t.Errorf("pieceCount %d produced %d pieces", n, len(p.Pieces))
		}
	}
}

func TestGenerate_NeverPreSolved(t *testing.T) {
	for level := 1; level <= 30; level++ {
		for _, inc := range []int{90, 45, 30, 180} {
			p, err := Generate(Config{Level: level, PieceCount: 6, RotationIncrement: inc, Seed: int64(level * 42)})
			if err != nil {
				t.Fatal(err)
			}
			for _, pc := range p.Pieces {
				if pc.Solved() {
					t.Errorf("level %d inc %d: %s starts solved at %d", level, inc, pc.ID, pc.CurrentRotation)
				}
				if pc.CurrentRotation%inc != 0 || pc.CurrentRotation <= 0 || pc.CurrentRotation >= 360 {
					t.Errorf("level %d inc %d: %s rotation %d not a scrambled step", level, inc, pc.ID, pc.CurrentRotation)
				}
			}
		}
	}
}

func TestGenerate_ScatterBound(t *testing.T) {
	for seed := int64(0); seed < 60; seed++ {
		p, err := Generate(Config{PieceCount: 17, RotationIncrement: 30, Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		for _, pc := range p.Pieces {
			if pc.Position.X < 80 || pc.Position.X > 320 || pc.Position.Y < 80 || pc.Position.Y > 320 {
				t.Errorf("seed %d: %s at %+v", seed, pc.ID, pc.Position)
			}
		}
	}
}

func TestGenerate_LevelOneScenario(t *testing.T) {
	p, err := Generate(Config{Level: 1, PieceCount: 3, RotationIncrement: 90, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(p.Pieces))
	}
	for i, pc := range p.Pieces {
		if pc.ID != PieceID(i) {
			t.Errorf("piece %d id %s", i, pc.ID)
		}
		switch pc.CurrentRotation {
		case 90, 180, 270:
		default:
			t.Errorf("%s rotation %d, want one of 90/180/270", pc.ID, pc.CurrentRotation)
		}
		if pc.CorrectRotation != 0 {
			t.Errorf("%s correct rotation %d", pc.ID, pc.CorrectRotation)
		}
		if pc.Color != p.Palette.At(i) {
			t.Errorf("%s color %s, want %s", pc.ID, pc.Color, p.Palette.At(i))
		}
		if !pc.Boundary.IsClosed() {
			t.Errorf("%s boundary not closed", pc.ID)
		}
		if pc.Connections == nil || len(pc.Connections) != 0 {
			t.Errorf("%s connections %v, want empty", pc.ID, pc.Connections)
		}
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cases := []Config{
		{PieceCount: 0, RotationIncrement: 90},
		{PieceCount: 3, RotationIncrement: 0},
		{PieceCount: 3, RotationIncrement: -90},
		{PieceCount: 3, RotationIncrement: 70},
		{PieceCount: 3, RotationIncrement: 360},
	}
	for _, cfg := range cases {
		if _, err := Generate(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Generate(%+v) err %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestPuzzle_PieceLookup(t *testing.T) {
	p, err := Generate(Config{PieceCount: 5, RotationIncrement: 45, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Piece("piece-4"); !ok {
		t.Error("piece-4 not found")
	}
	if _, ok := p.Piece("piece-5"); ok {
		t.Error("piece-5 should not exist")
	}
}
