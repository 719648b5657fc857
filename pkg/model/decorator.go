package model

// Decorator enriches a definition after it has been decoded, before it is
// validated and handed to sessions.
type Decorator interface {
	Decorate(*Definition) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Definition) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(def *Definition) error {
	return fn(def)
}

// LabelDecorator fills empty field labels using the supplied labeler.
func LabelDecorator(labeler func(string) string) Decorator {
	if labeler == nil {
		labeler = DefaultLabeler
	}
	return DecoratorFunc(func(def *Definition) error {
		if def == nil {
			return nil
		}
		for i := range def.Fields {
			labelField(&def.Fields[i], labeler)
		}
		return nil
	})
}

func labelField(field *Field, labeler func(string) string) {
	if field.Label == "" {
		field.Label = labeler(field.Name)
	}
	for i := range field.Nested {
		labelField(&field.Nested[i], labeler)
	}
	if field.Item != nil {
		for i := range field.Item.Nested {
			labelField(&field.Item.Nested[i], labeler)
		}
	}
}
