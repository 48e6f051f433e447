package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "x")
	t.Setenv("ENVUTIL_BOOL", "on")
	t.Setenv("ENVUTIL_SECONDS", "30")
	t.Setenv("ENVUTIL_LIST", " admin, ,financeiro ")
	t.Setenv("ENVUTIL_STRING", "  value ")

	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if !Bool("ENVUTIL_BOOL", false) {
		t.Fatal("Bool: expected true")
	}
	if got := Seconds("ENVUTIL_SECONDS", time.Minute); got != 30*time.Second {
		t.Fatalf("Seconds: got %s", got)
	}
	if got := List("ENVUTIL_LIST", nil); !reflect.DeepEqual(got, []string{"admin", "financeiro"}) {
		t.Fatalf("List: got %v", got)
	}
	if got := String("ENVUTIL_STRING", "d"); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("ENVUTIL_MISSING", "d"); got != "d" {
		t.Fatalf("String default: got %q", got)
	}
}
