package cassette

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkPlay(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("interactions=%d", size), func(b *testing.B) {
			interactions := make([]*Interaction, size)
			for i := range interactions {
				interactions[i] = NewInteraction(get(fmt.Sprintf("http://host.com/items/%d?page=%d", i, i%7)), respond(200, "ok"))
			}
			c, err := Load(context.Background(), "test",
				WithPersister(seeded(interactions...)),
				WithAllowPlaybackRepeats(true))
			if err != nil {
				b.Fatal(err)
			}
			last := get(fmt.Sprintf("http://host.com/items/%d?page=%d", size-1, (size-1)%7))

			b.ReportAllocs()
			for b.Loop() {
				if _, err := c.Play(last); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNoMatch(b *testing.B) {
	interactions := make([]*Interaction, 100)
	for i := range interactions {
		interactions[i] = NewInteraction(get(fmt.Sprintf("http://host.com/items/%d", i)), respond(200, "ok"))
	}
	c, err := Load(context.Background(), "test", WithPersister(seeded(interactions...)))
	if err != nil {
		b.Fatal(err)
	}
	miss := get("http://host.com/items/x")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.Play(miss); err == nil {
			b.Fatal("expected a miss")
		}
	}
}
