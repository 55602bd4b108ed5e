package port

import (
	"fmt"
	"strconv"

	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

type replyKind uint8

const (
	replyString replyKind = iota
	replyInt
	replyNil
	replyError
	replyArray
)

// Reply conforms to a real Redis server output on non pub / sub commands.
type Reply struct {
	kind            replyKind
	closeConnection bool // Closes the connection after writing if true.
	str             string
	integer         int
	array           []string
}

func closeRedisConnection(msg string) Reply {
	return Reply{kind: replyString, str: msg, closeConnection: true}
}

func writeRedisNil() Reply {
	return Reply{kind: replyNil}
}

func writeRedisInt(i int) Reply {
	return Reply{kind: replyInt, integer: i}
}

func writeRedisBool(b bool) Reply {
	if b {
		return writeRedisInt(1)
	}
	return writeRedisInt(0)
}

func writeRedisString(s string) Reply {
	return Reply{kind: replyString, str: s}
}

func writeRedisArray(values []string) Reply {
	return Reply{kind: replyArray, array: values}
}

func writeRedisError(err error) Reply {
	return Reply{kind: replyError, str: "ERR " + err.Error()}
}

// IsError reports whether the reply carries an error.
func (r Reply) IsError() bool {
	return r.kind == replyError
}

// String renders the reply the way redis-cli prints it, with arrays flattened into brackets.
func (r Reply) String() string {
	switch r.kind {
	case replyInt:
		return strconv.Itoa(r.integer)
	case replyNil:
		return "(nil)"
	case replyError:
		return "(error) " + r.str
	case replyArray:
		return fmt.Sprint(r.array)
	default:
		return r.str
	}
}

// writeTo serializes the reply on a Redis connection.
func (r Reply) writeTo(conn redcon.Conn) {
	switch r.kind {
	case replyInt:
		conn.WriteInt(r.integer)
	case replyNil:
		conn.WriteNull()
	case replyError:
		conn.WriteError(r.str)
	case replyArray:
		conn.WriteArray(len(r.array))
		for _, value := range r.array {
			conn.WriteBulkString(value)
		}
	default:
		conn.WriteString(r.str)
	}
}
