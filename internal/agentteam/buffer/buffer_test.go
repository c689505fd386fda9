package buffer

import (
	"testing"
	"time"
)

func mkEntry(typ EntryType, content string) Entry {
	return Entry{Timestamp: time.Unix(0, 0), Type: typ, Content: content}
}

func TestPushEvictsOldestWhenFull(t *testing.T) {
	b := New(3)
	for i := 0; i < 5; i++ {
		b.Push(mkEntry(AgentMessage, string(rune('a'+i))))
	}
	all := b.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	want := []string{"c", "d", "e"}
	for i, e := range all {
		if e.Content != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Content, want[i])
		}
	}
}

func TestLastMessagesZeroReturnsAll(t *testing.T) {
	b := New(10)
	b.Push(mkEntry(UserPrompt, "hi"))
	b.Push(mkEntry(AgentMessage, "hello"))

	all0 := b.LastMessages(0)
	allN := b.All()
	if len(all0) != len(allN) {
		t.Fatalf("LastMessages(0) len %d != All() len %d", len(all0), len(allN))
	}
}

func TestLastMessagesExceedingGroupCountReturnsAll(t *testing.T) {
	b := New(10)
	b.Push(mkEntry(UserPrompt, "hi"))
	b.Push(mkEntry(AgentMessage, "hello"))

	got := b.LastMessages(100)
	if len(got) != 2 {
		t.Fatalf("expected all 2 entries, got %d", len(got))
	}
}

func TestMessageGrouping(t *testing.T) {
	t.Run("lone user prompt is one message", func(t *testing.T) {
		b := New(10)
		b.Push(mkEntry(UserPrompt, "hi"))
		got := b.LastMessages(1)
		if len(got) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(got))
		}
	})

	t.Run("prompt plus run of agent entries is two messages", func(t *testing.T) {
		b := New(10)
		b.Push(mkEntry(UserPrompt, "hi"))
		b.Push(mkEntry(AgentMessage, "a"))
		b.Push(mkEntry(AgentMessage, "b"))

		lastOne := b.LastMessages(1)
		if len(lastOne) != 2 {
			t.Fatalf("expected last group to have 2 entries, got %d", len(lastOne))
		}
		lastTwo := b.LastMessages(2)
		if len(lastTwo) != 3 {
			t.Fatalf("expected both groups (3 entries), got %d", len(lastTwo))
		}
	})

	t.Run("permission request closes the current message", func(t *testing.T) {
		b := New(10)
		b.Push(mkEntry(UserPrompt, "hi"))
		b.Push(mkEntry(AgentMessage, "a"))
		b.Push(mkEntry(PermissionRequest, "need approval"))
		b.Push(mkEntry(ToolCallStart, "running"))

		// Groups: [UserPrompt], [AgentMessage, PermissionRequest], [ToolCallStart]
		last1 := b.LastMessages(1)
		if len(last1) != 1 || last1[0].Type != ToolCallStart {
			t.Fatalf("unexpected last group: %+v", last1)
		}
		last2 := b.LastMessages(2)
		if len(last2) != 3 {
			t.Fatalf("expected 3 entries in last 2 groups, got %d", len(last2))
		}
		last3 := b.LastMessages(3)
		if len(last3) != 4 {
			t.Fatalf("expected all 4 entries in last 3 groups, got %d", len(last3))
		}
	})
}

func TestLenReflectsPushes(t *testing.T) {
	b := New(2)
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d", b.Len())
	}
	b.Push(mkEntry(AgentMessage, "a"))
	b.Push(mkEntry(AgentMessage, "b"))
	b.Push(mkEntry(AgentMessage, "c"))
	if b.Len() != 2 {
		t.Fatalf("expected capped length 2, got %d", b.Len())
	}
}
