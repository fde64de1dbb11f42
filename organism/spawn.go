package organism

// CreateAlgaeOrganism creates a single algae cell organism with the
// given energy and adds it to the manager.
func (m *Manager) CreateAlgaeOrganism(col, row, energy int) *Cell {
	o := m.CreateOrganism(Alive)
	o.Weight = WaterWeight
	o.Moveable = true
	cell := NewAlgaeCell(col, row, NewSingleCellGenome())
	cell.Props[PropEnergy] = energy
	cell.AdjustColorByEnergy()
	o.Add(cell) // the first cell, cannot fail
	m.AddOrganism(o)
	return cell
}

// CreateH2SEaterOrganism creates a single hydrogen sulfide eater
// organism with the given energy and adds it to the manager.
func (m *Manager) CreateH2SEaterOrganism(col, row, energy int) *Cell {
	o := m.CreateOrganism(Alive)
	o.Weight = H2SEaterWeight
	o.Moveable = true
	cell := NewH2SEaterCell(col, row, NewSingleCellGenome())
	cell.Props[PropEnergy] = energy
	cell.AdjustColorByEnergy()
	o.Add(cell) // the first cell, cannot fail
	m.AddOrganism(o)
	return cell
}
