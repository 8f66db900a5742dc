package cloud

import (
	"context"
	"strings"
	"testing"
)

func TestBuildStream_Finished(t *testing.T) {
	input := `data: {"status":"queued","message":"Build queued"}

: keep-alive
data: {"status":"building","message":"Building android"}

data: not json

data: {"status":"finished","message":"Build finished","binary_url":"https://cloud.example/app.apk"}
`
	var progress []string
	ev, err := NewBuildStream(strings.NewReader(input)).Process(context.Background(), func(msg string) {
		progress = append(progress, msg)
	})
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if ev.BinaryURL != "https://cloud.example/app.apk" {
		t.Errorf("BinaryURL = %q", ev.BinaryURL)
	}
	want := []string{"Build queued", "Building android", "Build finished"}
	if strings.Join(progress, "|") != strings.Join(want, "|") {
		t.Errorf("progress = %v, want %v", progress, want)
	}
}

func TestBuildStream_Failed(t *testing.T) {
	input := `data: {"status":"building","message":"Building ios"}
data: {"status":"failed","error":"provisioning profile missing"}
`
	_, err := NewBuildStream(strings.NewReader(input)).Process(context.Background(), nil)
	if err == nil || err.Error() != "provisioning profile missing" {
		t.Errorf("err = %v", err)
	}
}

func TestBuildStream_EndsEarly(t *testing.T) {
	input := `data: {"status":"building","message":"Building ios"}
`
	_, err := NewBuildStream(strings.NewReader(input)).Process(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "building") {
		t.Errorf("err = %v", err)
	}
}

func TestUploadProgress_Percent(t *testing.T) {
	tests := []struct {
		p    UploadProgress
		want string
	}{
		{UploadProgress{Index: 0, Total: 3}, "33.33%"},
		{UploadProgress{Index: 1, Total: 2}, "100%"},
		{UploadProgress{Index: 0, Total: 2}, "50%"},
		{UploadProgress{Index: 0, Total: 8}, "12.5%"},
		{UploadProgress{Index: 1, Total: 3}, "66.66%"},
		{UploadProgress{}, "100%"},
	}
	for _, tt := range tests {
		if got := tt.p.Percent(); got != tt.want {
			t.Errorf("%+v.Percent() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
