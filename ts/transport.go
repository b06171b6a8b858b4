package ts

// Transport is the sampling channel of a panel: an SPI converter, an ADC
// multiplexer or a companion-chip register block.
type Transport interface {
	// Configure applies clocking and mode parameters.
	Configure(cfg BusConfig) error

	// Sample performs one blocking conversion of ch. It returns
	// ErrBusTimeout (possibly wrapped) when the hardware does not respond
	// in time, and does not retry.
	Sample(ch Channel) (RawSample, error)

	// Power switches the converter on or off.
	Power(on bool) error
}
