package port

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/nobletooth/tlist/pkg/collection"
	"github.com/nobletooth/tlist/pkg/scan"
	"github.com/nobletooth/tlist/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maxListLength = flag.Int("max_list_length", 0,
		"Maximum number of elements a single list may hold; 0 or negative means unlimited.")

	commandsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "port_commands_total",
		Help: "Total number of handled commands.",
	}, []string{"command", "status" /* ok | error */})

	errListTooLong = fmt.Errorf("%w: list too long", collection.ErrOutOfMemory)
	errNotInteger  = errors.New("value is not an integer or out of range")
)

// commandEntry describes the arity and implementation of a command. Arity excludes the command name.
type commandEntry struct {
	minArgs, maxArgs int // A negative maxArgs means unbounded.
	run              func(h *Handler, args []string) Reply
}

var commands = map[string]commandEntry{
	"PING":         {minArgs: 0, maxArgs: 1, run: (*Handler).ping},
	"QUIT":         {minArgs: 0, maxArgs: 0, run: (*Handler).quit},
	"KEYS":         {minArgs: 1, maxArgs: 1, run: (*Handler).keys},
	"DEL":          {minArgs: 1, maxArgs: -1, run: (*Handler).del},
	"LADD":         {minArgs: 2, maxArgs: -1, run: (*Handler).add},
	"LADDALL":      {minArgs: 2, maxArgs: 2, run: (*Handler).addAll},
	"LINSERTAT":    {minArgs: 3, maxArgs: 3, run: (*Handler).insertAt},
	"LINSERTALL":   {minArgs: 3, maxArgs: 3, run: (*Handler).insertAll},
	"LGETAT":       {minArgs: 2, maxArgs: 2, run: (*Handler).getAt},
	"LSETAT":       {minArgs: 3, maxArgs: 3, run: (*Handler).setAt},
	"LRANGE":       {minArgs: 3, maxArgs: 3, run: (*Handler).getRange},
	"LINDEXOF":     {minArgs: 2, maxArgs: 4, run: (*Handler).indexOf},
	"LLASTINDEXOF": {minArgs: 2, maxArgs: 2, run: (*Handler).lastIndexOf},
	"LREMOVE":      {minArgs: 2, maxArgs: 2, run: (*Handler).remove},
	"LREMOVEAT":    {minArgs: 2, maxArgs: 2, run: (*Handler).removeAt},
	"LREMOVERANGE": {minArgs: 3, maxArgs: 3, run: (*Handler).removeRange},
	"LREMOVEALL":   {minArgs: 2, maxArgs: 2, run: (*Handler).removeAll},
	"LCONTAINS":    {minArgs: 2, maxArgs: 2, run: (*Handler).contains},
	"LCONTAINSALL": {minArgs: 2, maxArgs: 2, run: (*Handler).containsAll},
	"LSORT":        {minArgs: 1, maxArgs: 3, run: (*Handler).sort},
	"LCOUNT":       {minArgs: 1, maxArgs: 1, run: (*Handler).count},
	"LCLEAR":       {minArgs: 1, maxArgs: 1, run: (*Handler).clear},
	"LHASH":        {minArgs: 1, maxArgs: 1, run: (*Handler).hash},
	"LEQUALS":      {minArgs: 2, maxArgs: 2, run: (*Handler).equals},
	"LCHECK":       {minArgs: 1, maxArgs: 1, run: (*Handler).check},
	"LMERGE":       {minArgs: 2, maxArgs: -1, run: (*Handler).merge},
}

// Handler executes list commands against a Registry. It is shared by the Redis server and the script runner.
type Handler struct {
	registry *Registry
}

// NewHandler creates a new Handler.
func NewHandler(registry *Registry) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("expected a non-nil registry")
	}
	return &Handler{registry: registry}, nil
}

// Handle runs `command` (case-insensitive) with `args` and returns its reply.
func (h *Handler) Handle(command string, args ...string) Reply {
	name := strings.ToUpper(command)
	entry, known := commands[name]
	var reply Reply
	switch {
	case !known:
		name = "unknown" // Keeps the metric cardinality bounded.
		reply = writeRedisError(fmt.Errorf("unknown command '%s'", command))
	case len(args) < entry.minArgs || (entry.maxArgs >= 0 && len(args) > entry.maxArgs):
		reply = writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(name)))
	default:
		reply = entry.run(h, args)
	}

	status := "ok"
	if reply.IsError() {
		status = "error"
	}
	commandsMetric.WithLabelValues(name, status).Inc()
	return reply
}

// parseInt parses an index or count argument.
func parseInt(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errNotInteger
	}
	return i, nil
}

// parseInts parses every argument with parseInt.
func parseInts(args ...string) ([]int, error) {
	ints := make([]int, len(args))
	for i, arg := range args {
		parsed, err := parseInt(arg)
		if err != nil {
			return nil, err
		}
		ints[i] = parsed
	}
	return ints, nil
}

// checkGrowth fails if adding `added` elements to `list` would exceed --max_list_length.
func checkGrowth(list *StringList, added int) error {
	if *maxListLength > 0 && list.Count()+added > *maxListLength {
		return errListTooLong
	}
	return nil
}

func (h *Handler) ping(args []string) Reply {
	if len(args) == 1 {
		return writeRedisString(args[0])
	}
	return writeRedisString("PONG")
}

func (h *Handler) quit([]string) Reply {
	return closeRedisConnection(RedisOk)
}

func (h *Handler) keys(args []string) Reply {
	return writeRedisArray(slices.Collect(scan.MatchGlob(args[0], slices.Values(h.registry.Names()))))
}

func (h *Handler) del(args []string) Reply {
	return writeRedisInt(h.registry.Delete(args...))
}

func (h *Handler) add(args []string) Reply {
	var count int
	err := h.registry.Update(args[0], func(list *StringList) error {
		if err := checkGrowth(list, len(args)-1); err != nil {
			return err
		}
		for _, value := range args[1:] {
			if err := list.Add(value); err != nil {
				return err
			}
		}
		count = list.Count()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(count)
}

func (h *Handler) addAll(args []string) Reply {
	other := h.registry.Snapshot(args[1])
	var count int
	err := h.registry.Update(args[0], func(list *StringList) error {
		if err := checkGrowth(list, other.Count()); err != nil {
			return err
		}
		if err := list.AddAll(other); err != nil {
			return err
		}
		count = list.Count()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(count)
}

func (h *Handler) insertAt(args []string) Reply {
	index, err := parseInt(args[1])
	if err != nil {
		return writeRedisError(err)
	}
	err = h.registry.Update(args[0], func(list *StringList) error {
		if err := checkGrowth(list, 1); err != nil {
			return err
		}
		return list.InsertAt(args[2], index)
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

func (h *Handler) insertAll(args []string) Reply {
	index, err := parseInt(args[1])
	if err != nil {
		return writeRedisError(err)
	}
	other := h.registry.Snapshot(args[2])
	var count int
	err = h.registry.Update(args[0], func(list *StringList) error {
		if err := checkGrowth(list, other.Count()); err != nil {
			return err
		}
		if err := list.InsertAllAt(other, index); err != nil {
			return err
		}
		count = list.Count()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(count)
}

func (h *Handler) getAt(args []string) Reply {
	index, err := parseInt(args[1])
	if err != nil {
		return writeRedisError(err)
	}
	var value string
	err = h.registry.View(args[0], func(list *StringList) error {
		value, err = list.GetAt(index)
		return err
	})
	if errors.Is(err, collection.ErrOutOfRange) {
		return writeRedisNil()
	} else if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(value)
}

func (h *Handler) setAt(args []string) Reply {
	index, err := parseInt(args[1])
	if err != nil {
		return writeRedisError(err)
	}
	err = h.registry.Update(args[0], func(list *StringList) error {
		return list.SetAt(args[2], index)
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

func (h *Handler) getRange(args []string) Reply {
	bounds, err := parseInts(args[1], args[2])
	if err != nil {
		return writeRedisError(err)
	}
	var values []string
	err = h.registry.View(args[0], func(list *StringList) error {
		subList, err := list.GetRange(bounds[0], bounds[1])
		if err != nil {
			return err
		}
		values = subList.ToSlice()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisArray(values)
}

func (h *Handler) indexOf(args []string) Reply {
	window, err := parseInts(args[2:]...)
	if err != nil {
		return writeRedisError(err)
	}
	var index int
	err = h.registry.View(args[0], func(list *StringList) error {
		switch len(window) {
		case 0:
			index, err = list.IndexOf(args[1])
		case 1:
			index, err = list.IndexOfFrom(args[1], window[0])
		default:
			index, err = list.IndexOfIn(args[1], window[0], window[1])
		}
		return err
	})
	if errors.Is(err, collection.ErrObjNotFound) {
		return writeRedisNil()
	} else if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(index)
}

func (h *Handler) lastIndexOf(args []string) Reply {
	var index int
	err := h.registry.View(args[0], func(list *StringList) (err error) {
		index, err = list.LastIndexOf(args[1])
		return err
	})
	if errors.Is(err, collection.ErrObjNotFound) {
		return writeRedisNil()
	} else if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(index)
}

func (h *Handler) remove(args []string) Reply {
	err := h.registry.Update(args[0], func(list *StringList) error {
		return list.Remove(args[1])
	})
	if errors.Is(err, collection.ErrObjNotFound) {
		return writeRedisInt(0)
	} else if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(1)
}

func (h *Handler) removeAt(args []string) Reply {
	index, err := parseInt(args[1])
	if err != nil {
		return writeRedisError(err)
	}
	err = h.registry.Update(args[0], func(list *StringList) error {
		return list.RemoveAt(index)
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

func (h *Handler) removeRange(args []string) Reply {
	bounds, err := parseInts(args[1], args[2])
	if err != nil {
		return writeRedisError(err)
	}
	err = h.registry.Update(args[0], func(list *StringList) error {
		return list.RemoveRange(bounds[0], bounds[1])
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

func (h *Handler) removeAll(args []string) Reply {
	other := h.registry.Snapshot(args[1])
	var count int
	err := h.registry.Update(args[0], func(list *StringList) error {
		if err := list.RemoveAll(other); err != nil {
			return err
		}
		count = list.Count()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(count)
}

func (h *Handler) contains(args []string) Reply {
	var found bool
	_ = h.registry.View(args[0], func(list *StringList) error {
		found = list.Contains(args[1])
		return nil
	})
	return writeRedisBool(found)
}

func (h *Handler) containsAll(args []string) Reply {
	other := h.registry.Snapshot(args[1])
	var containsAll bool
	err := h.registry.View(args[0], func(list *StringList) (err error) {
		containsAll, err = list.ContainsAll(other)
		return err
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisBool(containsAll)
}

// compareNumeric orders decimal strings by their numeric value.
func compareNumeric(x, y string) (int, error) {
	a, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return 0, fmt.Errorf("one or more elements can't be converted to number: %w", err)
	}
	b, err := strconv.ParseFloat(y, 64)
	if err != nil {
		return 0, fmt.Errorf("one or more elements can't be converted to number: %w", err)
	}
	return cmp.Compare(a, b), nil
}

func (h *Handler) sort(args []string) Reply {
	alpha, descending := false, false
	for _, option := range args[1:] {
		switch strings.ToUpper(option) {
		case "ALPHA":
			alpha = true
		case "NUM":
			alpha = false
		case "ASC":
			descending = false
		case "DESC":
			descending = true
		default:
			return writeRedisError(fmt.Errorf("syntax error near '%s'", option))
		}
	}

	var compare collection.FallibleCompareFn[string] = compareNumeric
	if alpha {
		compare = func(x, y string) (int, error) { return strings.Compare(x, y), nil }
	}
	if descending {
		ascending := compare
		compare = func(x, y string) (int, error) { return ascending(y, x) }
	}
	err := h.registry.Update(args[0], func(list *StringList) error {
		return list.SortFunc(compare)
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

func (h *Handler) count(args []string) Reply {
	var count int
	_ = h.registry.View(args[0], func(list *StringList) error {
		count = list.Count()
		return nil
	})
	return writeRedisInt(count)
}

func (h *Handler) clear(args []string) Reply {
	_ = h.registry.Update(args[0], func(list *StringList) error {
		list.Clear()
		return nil
	})
	return writeRedisString(RedisOk)
}

func (h *Handler) hash(args []string) Reply {
	var hash uint64
	_ = h.registry.View(args[0], func(list *StringList) error {
		hash = list.HashCode()
		return nil
	})
	return writeRedisString(strconv.FormatUint(hash, 10))
}

func (h *Handler) equals(args []string) Reply {
	return writeRedisBool(h.registry.Snapshot(args[0]).Equals(h.registry.Snapshot(args[1])))
}

func (h *Handler) check(args []string) Reply {
	err := h.registry.View(args[0], func(list *StringList) error {
		if err := list.Validate(); err != nil {
			utils.RaiseInvariant("port", "broken_list_topology", "A served list has a broken node chain.",
				"list", args[0], "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisString(RedisOk)
}

// merge stores the union of already sorted source lists into the destination, replacing its content.
// An optional ALPHA (default) or NUM right after the destination picks the order the sources are sorted by.
func (h *Handler) merge(args []string) Reply {
	destination, sourceNames := args[0], args[1:]
	numeric := false
	if len(sourceNames) > 1 {
		switch strings.ToUpper(sourceNames[0]) {
		case "ALPHA":
			sourceNames = sourceNames[1:]
		case "NUM":
			numeric, sourceNames = true, sourceNames[1:]
		}
	}

	compare := utils.CompareFn[string](strings.Compare)
	if numeric { // Every value is checked to be a number before merging.
		compare = func(x, y string) int {
			order, _ := compareNumeric(x, y)
			return order
		}
	}
	sources := make([]iter.Seq[string], 0, len(sourceNames))
	for _, name := range sourceNames {
		values := h.registry.Snapshot(name).ToSlice()
		if numeric {
			for _, value := range values {
				if _, err := strconv.ParseFloat(value, 64); err != nil {
					return writeRedisError(fmt.Errorf("one or more elements of '%s' can't be converted to number", name))
				}
			}
		}
		if !slices.IsSortedFunc(values, compare) {
			return writeRedisError(fmt.Errorf("source list '%s' is not sorted", name))
		}
		sources = append(sources, slices.Values(values))
	}
	merged, err := scan.MergeSorted(compare, sources)
	if err != nil {
		return writeRedisError(err)
	}
	values := slices.Collect(merged)

	var count int
	err = h.registry.Update(destination, func(list *StringList) error {
		if *maxListLength > 0 && len(values) > *maxListLength {
			return errListTooLong
		}
		list.Clear()
		if err := list.AddAll(collection.NewSliceCollection(values...)); err != nil {
			return err
		}
		count = list.Count()
		return nil
	})
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(count)
}
