package repl

// line is the text and cursor of the input.
type line struct {
	text   string
	cursor int
}

func (m model) save() line {
	return line{text: m.input.Value(), cursor: m.input.Position()}
}

func (m *model) restore(l line) {
	m.input.SetValue(l.text)
	m.input.SetCursor(l.cursor)
}

// commandNav remembers where Alt navigation started, to return there when
// it runs off either end of the command history.
type commandNav struct {
	mode inputMode
	from line
}

// switchMode parks the input of the current mode and brings back the input
// parked in mode.
func (m model) switchMode(mode inputMode) model {
	m.parked[m.mode] = m.save()
	m.mode = mode
	m.input.Prompt = prompt(mode)
	m.restore(m.parked[mode])
	m.complete(false)

	return m
}

// recall loads history entry i. With follow, the mode switches to the
// entry's.
func (m model) recall(i int, follow bool) model {
	e, err := m.history.At(i)
	if err != nil {
		return m
	}

	if follow && e.Mode != m.mode {
		m = m.switchMode(e.Mode)
	}

	m.hist = i
	m.restore(line{text: e.Line, cursor: len(e.Line)})
	m.complete(false)

	return m
}

// present leaves history browsing with an empty input.
func (m model) present() model {
	m.hist = m.history.Len()
	m.input.SetValue("")
	m.complete(false)

	return m
}

// browse steps through all of history.
func (m model) browse(step int) model {
	switch next := m.hist + step; {
	case next < 0:
		return m
	case next >= m.history.Len():
		return m.present()
	default:
		return m.recall(next, true)
	}
}

// seek finds the nearest entry of mode from the current position in the
// direction of step.
func (m model) seek(step int, mode inputMode) (int, bool) {
	for i := m.hist + step; i >= 0 && i < m.history.Len(); i += step {
		if e, err := m.history.At(i); err == nil && e.Mode == mode {
			return i, true
		}
	}

	return 0, false
}

// browseMode steps through the entries of the current mode.
func (m model) browseMode(step int) model {
	if i, ok := m.seek(step, m.mode); ok {
		return m.recall(i, false)
	}

	if step > 0 && m.hist < m.history.Len() {
		return m.present()
	}

	return m
}

// browseCommands steps through command history from either mode.
func (m model) browseCommands(step int) model {
	if m.nav == nil {
		m.nav = &commandNav{mode: m.mode, from: m.save()}

		if m.mode != modeCtrl {
			m = m.switchMode(modeCtrl)
		}
	}

	if i, ok := m.seek(step, modeCtrl); ok {
		return m.recall(i, false)
	}

	nav := m.nav
	m.nav = nil

	if nav.mode != m.mode {
		m = m.switchMode(nav.mode)
	}

	m.restore(nav.from)
	m.hist = m.history.Len()
	m.complete(false)

	return m
}
