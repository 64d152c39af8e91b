package scenario

import (
	"errors"
	"testing"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

func validInput() CreateInput {
	return CreateInput{
		Name:       "Starfield Skirmish",
		Mode:       ModePvE,
		MaxPlayers: 4,
		Roles: []Role{
			{Name: "Warrior", Stats: map[string]int{"strength": 15}},
			{Name: "Scientist", Stats: map[string]int{"intelligence": 15}},
		},
	}
}

func TestNormalizeCreateInputDefaultsThreshold(t *testing.T) {
	got, err := NormalizeCreateInput(validInput())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.MaxSuccessfulTurns != DefaultMaxSuccessfulTurns {
		t.Fatalf("expected default threshold %d, got %d", DefaultMaxSuccessfulTurns, got.MaxSuccessfulTurns)
	}
}

func TestNormalizeCreateInputTrimsName(t *testing.T) {
	input := validInput()
	input.Name = "  Starfield Skirmish  "

	got, err := NormalizeCreateInput(input)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Name != "Starfield Skirmish" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
}

func TestNormalizeCreateInputRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		code   apperrors.Code
	}{
		{"empty name", func(in *CreateInput) { in.Name = "  " }, apperrors.CodeScenarioNameEmpty},
		{"bad mode", func(in *CreateInput) { in.Mode = "CoOp" }, apperrors.CodeScenarioInvalidMode},
		{"zero capacity", func(in *CreateInput) { in.MaxPlayers = 0 }, apperrors.CodeScenarioInvalidCapacity},
		{"no roles", func(in *CreateInput) { in.Roles = nil }, apperrors.CodeScenarioRolesEmpty},
		{"blank role name", func(in *CreateInput) { in.Roles[0].Name = " " }, apperrors.CodeScenarioRolesEmpty},
		{"negative threshold", func(in *CreateInput) { in.MaxSuccessfulTurns = -1 }, apperrors.CodeScenarioInvalidThreshold},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := NormalizeCreateInput(input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperrors.New(tc.code, "")) {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestNormalizeCreateInputFillsNilStats(t *testing.T) {
	input := validInput()
	input.Roles[0].Stats = nil

	got, err := NormalizeCreateInput(input)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Roles[0].Stats == nil {
		t.Fatal("expected nil stats map to be initialized")
	}
}

func TestRoleLookup(t *testing.T) {
	s := Scenario{Roles: []Role{{Name: "Warrior"}, {Name: "Scientist"}}}

	if _, ok := s.Role("Scientist"); !ok {
		t.Fatal("expected role to be found")
	}
	if _, ok := s.Role("Bard"); ok {
		t.Fatal("expected unknown role to be missing")
	}
}
