package port

import (
	"testing"

	"github.com/nobletooth/tlist/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler returns a handler over a fresh registry.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	handler, err := NewHandler(NewRegistry(4))
	require.NoError(t, err)
	return handler
}

// assertReply runs a command and compares its rendered reply.
func assertReply(t *testing.T, handler *Handler, expected string, command string, args ...string) {
	t.Helper()
	assert.Equalf(t, expected, handler.Handle(command, args...).String(), "%s %v", command, args)
}

func TestNewHandler(t *testing.T) {
	_, err := NewHandler(nil)
	assert.Error(t, err)
}

func TestHandler_Basics(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "PONG", "PING")
	assertReply(t, handler, "hello", "ping", "hello")
	assertReply(t, handler, "(error) ERR unknown command 'FLY'", "FLY")
	assertReply(t, handler, "(error) ERR wrong number of arguments for 'ladd' command", "LADD", "nums")

	quit := handler.Handle("QUIT")
	assert.True(t, quit.closeConnection)
	assert.Equal(t, RedisOk, quit.String())
}

func TestHandler_EndToEnd(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "1", "LADD", "nums", "1")
	assertReply(t, handler, "3", "LADD", "nums", "2", "3")
	assertReply(t, handler, "OK", "LINSERTAT", "nums", "1", "4")
	assertReply(t, handler, "[1 4 2 3]", "LRANGE", "nums", "0", "4")
	assertReply(t, handler, "OK", "LSORT", "nums")
	assertReply(t, handler, "[1 2 3 4]", "LRANGE", "nums", "0", "4")
	assertReply(t, handler, "1", "LREMOVE", "nums", "3")
	assertReply(t, handler, "OK", "LREMOVEAT", "nums", "0")
	assertReply(t, handler, "[2 4]", "LRANGE", "nums", "0", "2")
	assertReply(t, handler, "OK", "LCHECK", "nums")
}

func TestHandler_Reads(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "5", "LADD", "letters", "a", "b", "a", "c", "b")

	assertReply(t, handler, "b", "LGETAT", "letters", "1")
	assertReply(t, handler, "(nil)", "LGETAT", "letters", "5")
	assertReply(t, handler, "(error) ERR value is not an integer or out of range", "LGETAT", "letters", "x")
	assertReply(t, handler, "[b a]", "LRANGE", "letters", "1", "2")
	assertReply(t, handler, "[]", "LRANGE", "missing", "0", "0")
	assert.True(t, handler.Handle("LRANGE", "letters", "5", "0").IsError())

	assertReply(t, handler, "1", "LINDEXOF", "letters", "b")
	assertReply(t, handler, "4", "LINDEXOF", "letters", "b", "2")
	assertReply(t, handler, "(nil)", "LINDEXOF", "letters", "c", "0", "3")
	assertReply(t, handler, "(nil)", "LINDEXOF", "letters", "z")
	assertReply(t, handler, "3", "LLASTINDEXOF", "letters", "c")
	assertReply(t, handler, "(nil)", "LLASTINDEXOF", "missing", "c")

	assertReply(t, handler, "1", "LCONTAINS", "letters", "c")
	assertReply(t, handler, "0", "LCONTAINS", "letters", "z")
	assertReply(t, handler, "5", "LCOUNT", "letters")
	assertReply(t, handler, "0", "LCOUNT", "missing")
}

func TestHandler_Writes(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "4", "LADD", "list", "a", "b", "c", "d")

	assertReply(t, handler, "OK", "LSETAT", "list", "0", "A")
	assertReply(t, handler, "A", "LGETAT", "list", "0")
	assert.True(t, handler.Handle("LSETAT", "list", "9", "x").IsError())
	assert.True(t, handler.Handle("LINSERTAT", "list", "9", "x").IsError())
	assert.True(t, handler.Handle("LREMOVEAT", "list", "-1").IsError())

	assertReply(t, handler, "0", "LREMOVE", "list", "z")
	assertReply(t, handler, "OK", "LREMOVERANGE", "list", "1", "2")
	assertReply(t, handler, "[A d]", "LRANGE", "list", "0", "2")

	assertReply(t, handler, "OK", "LCLEAR", "list")
	assertReply(t, handler, "0", "LCOUNT", "list")
	assertReply(t, handler, "[]", "KEYS", "*")
}

func TestHandler_Bulk(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "2", "LADD", "dst", "1", "2")
	assertReply(t, handler, "3", "LADD", "src", "7", "8", "1")

	assertReply(t, handler, "5", "LADDALL", "dst", "src")
	assertReply(t, handler, "[1 2 7 8 1]", "LRANGE", "dst", "0", "5")
	assertReply(t, handler, "8", "LINSERTALL", "dst", "1", "src")
	assertReply(t, handler, "[1 7 8 1 2 7 8 1]", "LRANGE", "dst", "0", "8")
	assert.True(t, handler.Handle("LINSERTALL", "dst", "99", "src").IsError())

	assertReply(t, handler, "1", "LCONTAINSALL", "dst", "src")
	assertReply(t, handler, "0", "LCONTAINSALL", "src", "dst")
	assertReply(t, handler, "1", "LCONTAINSALL", "src", "missing")

	assertReply(t, handler, "5", "LREMOVEALL", "dst", "src")
	assertReply(t, handler, "[1 2 7 8 1]", "LRANGE", "dst", "0", "5")

	assertReply(t, handler, "3", "LADDALL", "copy", "src")
	assertReply(t, handler, "3", "LADDALL", "src", "missing")
	assertReply(t, handler, "6", "LADDALL", "src", "src")
}

func TestHandler_Sort(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "4", "LADD", "nums", "10", "9", "100", "1")
	assertReply(t, handler, "OK", "LSORT", "nums")
	assertReply(t, handler, "[1 9 10 100]", "LRANGE", "nums", "0", "4")
	assertReply(t, handler, "OK", "LSORT", "nums", "alpha")
	assertReply(t, handler, "[1 10 100 9]", "LRANGE", "nums", "0", "4")
	assertReply(t, handler, "OK", "LSORT", "nums", "NUM", "DESC")
	assertReply(t, handler, "[100 10 9 1]", "LRANGE", "nums", "0", "4")
	assert.True(t, handler.Handle("LSORT", "nums", "SIDEWAYS").IsError())

	assertReply(t, handler, "2", "LADD", "words", "b", "a")
	reply := handler.Handle("LSORT", "words")
	assert.Contains(t, reply.String(), "can't be converted to number")
}

func TestHandler_EqualsAndHash(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "2", "LADD", "first", "a", "b")
	assertReply(t, handler, "2", "LADD", "second", "a", "b")
	assertReply(t, handler, "1", "LEQUALS", "first", "second")
	assert.Equal(t, handler.Handle("LHASH", "first").String(), handler.Handle("LHASH", "second").String())

	assertReply(t, handler, "OK", "LSETAT", "second", "1", "c")
	assertReply(t, handler, "0", "LEQUALS", "first", "second")
	assert.NotEqual(t, handler.Handle("LHASH", "first").String(), handler.Handle("LHASH", "second").String())
}

func TestHandler_Merge(t *testing.T) {
	handler := newTestHandler(t)
	assertReply(t, handler, "3", "LADD", "s1", "a", "c", "e")
	assertReply(t, handler, "3", "LADD", "s2", "b", "c", "f")
	assertReply(t, handler, "1", "LADD", "merged", "stale")
	assertReply(t, handler, "5", "LMERGE", "merged", "s1", "s2", "missing")
	assertReply(t, handler, "[a b c e f]", "LRANGE", "merged", "0", "5")

	assertReply(t, handler, "2", "LADD", "unsorted", "z", "a")
	assertReply(t, handler, "(error) ERR source list 'unsorted' is not sorted", "LMERGE", "merged", "unsorted")

	t.Run("numeric order", func(t *testing.T) {
		assertReply(t, handler, "OK", "LCLEAR", "n1")
		assertReply(t, handler, "3", "LADD", "n1", "10", "9", "1")
		assertReply(t, handler, "2", "LADD", "n2", "100", "2")
		assertReply(t, handler, "OK", "LSORT", "n1")
		assertReply(t, handler, "OK", "LSORT", "n2")

		assertReply(t, handler, "(error) ERR source list 'n1' is not sorted", "LMERGE", "merged", "n1", "n2")
		assertReply(t, handler, "5", "LMERGE", "merged", "num", "n1", "n2", "n1")
		assertReply(t, handler, "[1 2 9 10 100]", "LRANGE", "merged", "0", "5")
		assertReply(t, handler, "(error) ERR one or more elements of 's1' can't be converted to number",
			"LMERGE", "merged", "NUM", "n1", "s1")
	})

	t.Run("explicit alpha", func(t *testing.T) {
		assertReply(t, handler, "5", "LMERGE", "merged", "ALPHA", "s1", "s2")
		assertReply(t, handler, "[a b c e f]", "LRANGE", "merged", "0", "5")
	})

	t.Run("lone option is a list name", func(t *testing.T) {
		assertReply(t, handler, "1", "LADD", "num", "z")
		assertReply(t, handler, "1", "LMERGE", "merged", "num")
		assertReply(t, handler, "[z]", "LRANGE", "merged", "0", "1")
	})
}

func TestHandler_KeysAndDel(t *testing.T) {
	handler := newTestHandler(t)
	for _, name := range []string{"list1", "list2", "queue"} {
		assertReply(t, handler, "1", "LADD", name, "x")
	}
	assertReply(t, handler, "[list1 list2 queue]", "KEYS", "*")
	assertReply(t, handler, "[list1 list2]", "KEYS", "list?")
	assertReply(t, handler, "2", "DEL", "list1", "queue", "missing")
	assertReply(t, handler, "[list2]", "KEYS", "*")
}

func TestHandler_MaxListLength(t *testing.T) {
	utils.SetTestFlag(t, "max_list_length", "3")
	handler := newTestHandler(t)
	assertReply(t, handler, "3", "LADD", "list", "a", "b", "c")
	assertReply(t, handler, "(error) ERR out of memory: list too long", "LADD", "list", "d")
	assertReply(t, handler, "(error) ERR out of memory: list too long", "LINSERTAT", "list", "0", "d")
	assertReply(t, handler, "(error) ERR out of memory: list too long", "LADDALL", "list", "list")
	assertReply(t, handler, "3", "LCOUNT", "list")
}

func TestHandler_CommandsMetric(t *testing.T) {
	handler := newTestHandler(t)
	okCount := utils.CounterValue(commandsMetric.WithLabelValues("PING", "ok"))
	unknownCount := utils.CounterValue(commandsMetric.WithLabelValues("unknown", "error"))
	handler.Handle("ping")
	handler.Handle("nope")
	assert.Equal(t, okCount+1, utils.CounterValue(commandsMetric.WithLabelValues("PING", "ok")))
	assert.Equal(t, unknownCount+1, utils.CounterValue(commandsMetric.WithLabelValues("unknown", "error")))
}
