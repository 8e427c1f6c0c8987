package components

import (
	"testing"
)

func TestInputPayload(t *testing.T) {
	in := NewInput()
	in.SetLineEnding([]byte("\r\n"))

	if _, err := in.Payload(); err == nil {
		t.Error("empty input should not produce a payload")
	}

	in.SetValue("AT")
	got, err := in.Payload()
	if err != nil || string(got) != "AT\r\n" {
		t.Errorf("ASCII payload = %q, %v", got, err)
	}

	in.ToggleSendingMode()
	if in.GetSendingMode() != SendingModeHex {
		t.Fatalf("expected hex mode, got %v", in.GetSendingMode())
	}
	in.SetValue("41 54")
	got, err = in.Payload()
	if err != nil || string(got) != "AT" {
		t.Errorf("hex payload = %q, %v (hex lines get no line ending)", got, err)
	}
}

func TestInputHint(t *testing.T) {
	tests := []struct {
		name   string
		mode   SendingMode
		eol    []byte
		value  string
		hint   string
		wantOK bool
	}{
		{"empty", SendingModeASCII, []byte("\n"), "", "", true},
		{"ascii with lf", SendingModeASCII, []byte("\n"), "ping", "5 B +LF", true},
		{"ascii with crlf", SendingModeASCII, []byte("\r\n"), "ping", "6 B +CRLF", true},
		{"ascii without eol", SendingModeASCII, nil, "ping", "4 B", true},
		{"hex", SendingModeHex, []byte("\n"), "01 02 03", "3 B", true},
		{"odd hex", SendingModeHex, nil, "012", "odd digits", false},
		{"bad hex", SendingModeHex, nil, "zz", "invalid hex", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInput()
			in.SetLineEnding(tt.eol)
			if tt.mode == SendingModeHex {
				in.ToggleSendingMode()
			}
			in.SetValue(tt.value)

			hint, ok := in.Hint()
			if hint != tt.hint || ok != tt.wantOK {
				t.Errorf("Hint() = %q, %v; expected %q, %v", hint, ok, tt.hint, tt.wantOK)
			}
		})
	}
}

func TestInputHistory(t *testing.T) {
	in := NewInput()
	in.AddToHistory("first")
	in.AddToHistory("second")
	in.AddToHistory("second")
	in.AddToHistory("  ")

	in.SetValue("draft")
	in.NavigateHistoryUp()
	if in.Value() != "second" {
		t.Errorf("history up = %q, expected second", in.Value())
	}
	in.NavigateHistoryUp()
	if in.Value() != "first" {
		t.Errorf("history up = %q, expected first", in.Value())
	}
	in.NavigateHistoryUp()
	if in.Value() != "first" {
		t.Errorf("history up past the oldest entry = %q", in.Value())
	}
	in.NavigateHistoryDown()
	in.NavigateHistoryDown()
	if in.Value() != "draft" {
		t.Errorf("history down to the draft = %q", in.Value())
	}
}

func TestInputHistoryRestoresMode(t *testing.T) {
	in := NewInput()
	in.AddToHistory("hello")
	in.ToggleSendingMode()
	in.AddToHistory("DE AD")
	in.ToggleSendingMode()

	in.SetValue("draft")
	in.NavigateHistoryUp()
	if in.Value() != "DE AD" || in.GetSendingMode() != SendingModeHex {
		t.Errorf("recalled %q in %v, expected DE AD in HEX", in.Value(), in.GetSendingMode())
	}
	in.NavigateHistoryUp()
	if in.Value() != "hello" || in.GetSendingMode() != SendingModeASCII {
		t.Errorf("recalled %q in %v, expected hello in ASCII", in.Value(), in.GetSendingMode())
	}
	in.NavigateHistoryDown()
	in.NavigateHistoryDown()
	if in.Value() != "draft" || in.GetSendingMode() != SendingModeASCII {
		t.Errorf("draft restored as %q in %v", in.Value(), in.GetSendingMode())
	}

	// The same text in another mode is a different entry.
	in.AddToHistory("41")
	in.ToggleSendingMode()
	in.AddToHistory("41")
	if len(in.history) != 4 {
		t.Errorf("history has %d entries, expected 4", len(in.history))
	}
}
