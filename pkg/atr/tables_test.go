package atr

import (
	"math"
	"strings"
	"testing"
)

func TestDeriveTiming(t *testing.T) {
	tests := []struct {
		name      string
		ta1       byte
		wantFi    int
		wantDi    int
		wantClock float64
		wantBaud  float64
		internal  bool
		wantErr   bool
	}{
		{
			name:      "Default factors (Fi=372, Di=1)",
			ta1:       0x11,
			wantFi:    372,
			wantDi:    1,
			wantClock: 13440.86,
			wantBaud:  13440.86,
		},
		{
			name:      "Fi index 0 uses internal clock, same value as index 1",
			ta1:       0x01,
			wantFi:    372,
			wantDi:    1,
			wantClock: 13440.86,
			wantBaud:  13440.86,
			internal:  true,
		},
		{
			name:      "High-rate factors (Fi=512, Di=16)",
			ta1:       0x95,
			wantFi:    512,
			wantDi:    16,
			wantClock: 9765.63,
			wantBaud:  610.35,
		},
		{
			name:    "Reserved Fi index",
			ta1:     0x70,
			wantErr: true,
		},
		{
			name:    "Reserved Di index",
			ta1:     0x1A,
			wantErr: true,
		},
		{
			name:    "Di index 0 is reserved",
			ta1:     0x10,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing, err := DeriveTiming(tt.ta1)

			if tt.wantErr {
				if err == nil {
					t.Fatal("DeriveTiming() succeeded, want error")
				}
				if !strings.Contains(err.Error(), "cannot calculate frequency/baud rate") {
					t.Errorf("Error = %q, want RFU message", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveTiming() error: %v", err)
			}

			if timing.Fi != tt.wantFi {
				t.Errorf("Fi = %d, want %d", timing.Fi, tt.wantFi)
			}
			if timing.Di != tt.wantDi {
				t.Errorf("Di = %d, want %d", timing.Di, tt.wantDi)
			}
			if timing.InternalClock != tt.internal {
				t.Errorf("InternalClock = %v, want %v", timing.InternalClock, tt.internal)
			}
			if math.Abs(timing.ClockFrequency-tt.wantClock) > 0.01 {
				t.Errorf("ClockFrequency = %.2f Hz, want %.2f", timing.ClockFrequency, tt.wantClock)
			}
			if math.Abs(timing.MaxBaudRate-tt.wantBaud) > 0.01 {
				t.Errorf("MaxBaudRate = %.2f bit/s, want %.2f", timing.MaxBaudRate, tt.wantBaud)
			}
		})
	}
}

func TestTagTypeName(t *testing.T) {
	tests := []struct {
		code byte
		want string
	}{
		{0x44, "MIFARE Plus"},
		{0x28, "MIFARE DESFire"},
		{0x11, "MIFARE Classic 1K"},
		{0x10, "FeliCa (Type 3)"},
		{0x99, TagTypeUnknown},
	}

	for _, tt := range tests {
		if got := TagTypeName(tt.code); got != tt.want {
			t.Errorf("TagTypeName(%#02X) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
