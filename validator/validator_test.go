package validator

import (
	"errors"
	"strings"
	"testing"
)

type target struct {
	Name   string
	Host   string
	Port   int
	Kind   string
	Params map[string]string
	note   string
}

func TestRulesValidate(t *testing.T) {
	rules := Rules{
		"Name":        {Required.Msg("Name is required"), MaxLen(5)},
		"Host":        {NoSpace.Optional()},
		"Port":        {Range(0, 65535).Msg("bad port")},
		"Kind":        {In("a", "b").Optional()},
		"Params.mode": {In("on", "off").Optional()},
		"note":        {Required},
		"Missing":     {Required},
	}

	t.Run("Valid", func(t *testing.T) {
		if err := rules.Validate(target{Name: "main", Port: 5432}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Pointer", func(t *testing.T) {
		v := &target{Name: "main", Host: "db.local", Kind: "a", Params: map[string]string{"mode": "on"}}
		if err := rules.Validate(v); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		err := rules.Validate(target{
			Host:   "two words",
			Port:   70000,
			Kind:   "c",
			Params: map[string]string{"mode": "sometimes"},
		})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected ValidationErrors, got %T", err)
		}
		for _, field := range []string{"Name", "Host", "Port", "Kind", "Params.mode"} {
			if len(verrs[field]) == 0 {
				t.Errorf("expected an error for %s", field)
			}
		}
		for _, skipped := range []string{"note", "Missing"} {
			if _, ok := verrs[skipped]; ok {
				t.Errorf("%s must be skipped", skipped)
			}
		}
		msg := err.Error()
		if !strings.HasPrefix(msg, "Host: ") || !strings.Contains(msg, "Port: bad port") {
			t.Errorf("unexpected message order: %s", msg)
		}
		if !strings.Contains(msg, "sometimes is not one of [on off]") {
			t.Errorf("In message = %s", msg)
		}
	})

	t.Run("MaxLen", func(t *testing.T) {
		err := rules.Validate(target{Name: "toolong"})
		if err == nil || !strings.Contains(err.Error(), "at most 5") {
			t.Errorf("expected MaxLen error, got %v", err)
		}
	})

	t.Run("NotAStruct", func(t *testing.T) {
		if err := rules.Validate(42); err == nil {
			t.Error("expected error for non-struct")
		}
	})
}

func TestMapEntryAbsent(t *testing.T) {
	rules := Rules{"Params.mode": {Required}}
	err := rules.Validate(target{Params: map[string]string{"other": "x"}})
	if err == nil || !strings.Contains(err.Error(), "Params.mode: is required") {
		t.Errorf("absent entry should be checked as empty, got %v", err)
	}
	if err := (Rules{"Port.mode": {Required}}).Validate(target{}); err != nil {
		t.Errorf("path into a non-map field must be ignored, got %v", err)
	}
}

func TestWhen(t *testing.T) {
	enabled := false
	rule := Required.When(func() bool { return enabled })
	if err := rule.Validate(""); err != nil {
		t.Errorf("rule with false condition should pass, got %v", err)
	}
	enabled = true
	if err := rule.Validate(""); err == nil {
		t.Error("rule with true condition should run")
	}
	if err := Required.Validate(""); err == nil {
		t.Error("When must not change the shared rule")
	}
}

func TestRangeIgnoresNonNumbers(t *testing.T) {
	if err := Range(1, 2).Validate("not a number"); err != nil {
		t.Errorf("got %v", err)
	}
	if err := Range(1, 2).Validate(uint8(3)); err == nil {
		t.Error("expected range error")
	}
}
