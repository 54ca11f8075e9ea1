package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event describes one change to a watched path.
type Event struct {
	Path string
	Op   string // lowercase operation names joined by "|", e.g. "write"
}

// Notifier is a source of change notifications.
//
// Watch returns a channel that delivers an Event for every change to path.
// The channel is closed when ctx is done or the source shuts down.
type Notifier interface {
	Watch(ctx context.Context, path string) (<-chan Event, error)
}

// FSNotifier watches the file system with fsnotify.
type FSNotifier struct{}

// Watch implements [Notifier].
func (FSNotifier) Watch(ctx context.Context, path string) (<-chan Event, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrExternal.Wrap(err).With(slog.String("path", path))
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()

		return nil, ErrExternal.Wrap(err).With(slog.String("path", path))
	}

	ch := make(chan Event)

	go func() {
		defer close(ch)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				e := Event{Path: ev.Name, Op: strings.ToLower(ev.Op.String())}

				select {
				case ch <- e:
				case <-ctx.Done():
					return
				}

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

// evalWatch runs the watch loop. It returns only when ctx is done (with its
// cause), when the notification source closes, or when the body fails.
func (in *Interpreter) evalWatch(ctx context.Context, n *Watch, scope *Scope) (Value, error) {
	pathV, err := in.Evaluate(ctx, n.Path, scope)
	if err != nil {
		return Empty(), err
	}

	if err := pathV.Expect(KindString); err != nil {
		return Empty(), WrapError(err).With(slog.String("macro", "watch"))
	}

	path := pathV.Str()

	events, err := in.cfg.notifier.Watch(ctx, path)
	if err != nil {
		return Empty(), err
	}

	in.cfg.logger.DebugContext(ctx, "watch started", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			in.cfg.logger.DebugContext(ctx, "watch stopped", slog.String("path", path))

			return Empty(), context.Cause(ctx)

		case ev, ok := <-events:
			if !ok {
				return Empty(), nil
			}

			in.cfg.logger.TraceContext(ctx, "watch event",
				slog.String("path", ev.Path),
				slog.String("op", ev.Op),
			)

			input := MapValue(MapOf("path", String(ev.Path), "op", String(ev.Op)))

			child := scope.Child()
			child.Bind(InputKey, input)

			v, err := in.Evaluate(ctx, n.Body, child)
			if err != nil {
				return Empty(), err
			}

			if v.Kind() == KindFunction {
				if _, err := in.Invoke(ctx, v, input); err != nil {
					return Empty(), err
				}
			}
		}
	}
}
