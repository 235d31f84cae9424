package platform_test

import (
	"testing"

	"yt-comment-crawler-go/internal/platform"
	_ "yt-comment-crawler-go/internal/platform/youtube"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, n := range []string{"youtube", "yt", "YouTube"} {
		if _, err := platform.New(n); err != nil {
			t.Fatalf("New(%s) err: %v", n, err)
		}
	}
	if names := platform.Names(); len(names) != 1 || names[0] != "youtube" {
		t.Fatalf("Names = %v", names)
	}
}
