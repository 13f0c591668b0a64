package catalog

// Build normalizes an options table into a catalog. No partial catalog is returned on error.
func Build(raw Table) (*Catalog, error) {
	table, err := raw.Normalize(optionsTable)
	if err != nil {
		return nil, err
	}
	layout, err := ParseLayout(table.Header)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		pins:         make([]Pin, 0, table.Len()),
		pinKeys:      make(map[pinName]int, table.Len()),
		moduleKeys:   make(map[string]int),
		functionKeys: make(map[string]int),
		modFuncKeys:  make(map[ModFunc]int),
		candidateKey: make(map[Candidate]int),
		source:       table,
	}

	for i, row := range table.Rows {
		pin := Pin{BoardPin: row[layout.BoardPin], MCUPin: row[layout.MCUPin]}
		if layout.Comment >= 0 {
			pin.Comment = row[layout.Comment]
		}
		if pin.BoardPin == "" && pin.MCUPin == "" {
			return nil, rowError(optionsTable, i, ColumnBoardPin, "row without board and MCU pin")
		}
		name := pinName{board: pin.BoardPin, mcu: pin.MCUPin}
		if _, ok := c.pinKeys[name]; !ok {
			c.pinKeys[name] = i
		}
		c.pins = append(c.pins, pin)
	}

	// Modules first over every module column, then functions, both in first-seen order.
	for _, alt := range layout.Alts {
		for _, row := range table.Rows {
			c.addModule(row[alt.Module])
		}
	}
	for _, alt := range layout.Alts {
		for _, row := range table.Rows {
			c.addFunction(row[alt.Function])
		}
	}

	c.byPin = make([][]int, len(c.pins))
	for pinKey, row := range table.Rows {
		for _, alt := range layout.Alts {
			module, function := row[alt.Module], row[alt.Function]
			if IsSentinel(module) || IsSentinel(function) {
				continue
			}
			mf := ModFunc{Module: c.moduleKeys[module], Function: c.functionKeys[function]}
			mfKey, ok := c.modFuncKeys[mf]
			if !ok {
				mfKey = len(c.modFuncs)
				c.modFuncs = append(c.modFuncs, mf)
				c.modFuncKeys[mf] = mfKey
				c.byModFunc = append(c.byModFunc, nil)
			}
			cand := Candidate{Pin: pinKey, ModFunc: mfKey}
			key := len(c.candidates)
			c.candidates = append(c.candidates, cand)
			if _, ok := c.candidateKey[cand]; !ok {
				c.candidateKey[cand] = key
			}
			c.byPin[pinKey] = append(c.byPin[pinKey], key)
			c.byModFunc[mfKey] = append(c.byModFunc[mfKey], key)
		}
	}
	return c, nil
}

func (c *Catalog) addModule(name string) {
	if IsSentinel(name) {
		return
	}
	if _, ok := c.moduleKeys[name]; ok {
		return
	}
	c.moduleKeys[name] = len(c.modules)
	c.modules = append(c.modules, name)
}

func (c *Catalog) addFunction(name string) {
	if IsSentinel(name) {
		return
	}
	if _, ok := c.functionKeys[name]; ok {
		return
	}
	c.functionKeys[name] = len(c.functions)
	c.functions = append(c.functions, name)
}
