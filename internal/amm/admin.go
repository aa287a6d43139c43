package amm

// noCopy lets go vet flag an AdminCap copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// AdminCap authorizes trading toggles, fee withdrawal and liquidity removal on
// the engine that minted it. Only New and Restore mint one.
type AdminCap struct {
	_ noCopy

	engine *Engine
}

func (e *Engine) authorize(admin *AdminCap) error {
	if admin == nil || admin.engine != e || e.admin != admin {
		return ErrNotAdmin
	}
	return nil
}
