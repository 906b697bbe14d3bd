// Package logging defines the structured log sink used by backflow components.
//
// Components accept a Logger and never depend on a concrete backend.
// NewZap and NewSugared adapt zap loggers, forwarding key-value pairs as
// structured fields through zap's Infow family. Nop discards everything.
//
//	logger := logging.NewZap(zapLogger)
//	pub, _ := linereader.New(linereader.FileResource{}, "data.txt",
//		linereader.Config{Logger: logger})
package logging
