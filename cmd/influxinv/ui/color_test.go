package ui

import "testing"

func TestEnvTruthyValues(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "one", value: "1", want: true},
		{name: "true", value: "TRUE", want: true},
		{name: "on", value: " on ", want: true},
		{name: "zero", value: "0", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("INFLUXINV_TEST_TRUTHY", tc.value)
			if got := envTruthy("INFLUXINV_TEST_TRUTHY"); got != tc.want {
				t.Fatalf("envTruthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestColorEnabled(t *testing.T) {
	t.Setenv(envNoColor, "")
	t.Setenv(envCI, "")
	t.Setenv(envTerm, "xterm-256color")

	if !colorEnabled(false, true) {
		t.Fatal("color disabled on a plain terminal")
	}
	if colorEnabled(true, true) {
		t.Fatal("--no-color ignored")
	}
	if colorEnabled(false, false) {
		t.Fatal("color enabled without a terminal")
	}

	t.Setenv(envNoColor, "1")
	if colorEnabled(false, true) {
		t.Fatal("NO_COLOR ignored")
	}

	t.Setenv(envNoColor, "")
	t.Setenv(envTerm, "dumb")
	if colorEnabled(false, true) {
		t.Fatal("TERM=dumb ignored")
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"":             "",
		"abc":          "***",
		"supersecret1": "********ret1",
	} {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
