// Package nlp holds the NER pipelines nerdemo can run and the loader that picks one at startup.
package nlp

import "github.com/slulibrary/nerdemo/internal"

var log = internal.GetLogger()
