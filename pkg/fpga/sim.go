package fpga

// SimConfigurer is an in-memory Configurer for unit tests. It records every
// configured bitstream path and answers Connected from a fixed result.
type SimConfigurer struct {
	// ConnectedResult is returned by Connected.
	ConnectedResult bool
	// ConnectedErr, when set, is returned by Connected.
	ConnectedErr error
	// ConfigureErr, when set, makes Configure fail.
	ConfigureErr error

	Configured []string
}

func (s *SimConfigurer) Configure(bitstreamPath string) error {
	if s.ConfigureErr != nil {
		return s.ConfigureErr
	}
	s.Configured = append(s.Configured, bitstreamPath)
	return nil
}

func (s *SimConfigurer) Connected() (bool, error) {
	if s.ConnectedErr != nil {
		return false, s.ConnectedErr
	}
	return s.ConnectedResult, nil
}
