// Package ui holds the small styled pieces the sensdash CLI prints outside
// the dashboard: status symbols, a spinner for slow probes and a plain
// table renderer for sensor listings.
//
//	s := ui.NewSpinner(os.Stderr, "Probing web1")
//	s.Start()
//	if err := probe(); err != nil {
//		s.Fail(err.Error())
//	} else {
//		s.Success("")
//	}
//
// Call DisableColors before printing when output is not a terminal or
// --no-color is set.
package ui
