/*
Package dsl builds MLN model and evidence text programmatically.

It is useful for tests, generated models and anything else that would
otherwise concatenate strings by hand:

	model, err := dsl.NewModel().
		Predicate("Smokes", "person").
		Predicate("Cancer", "person").
		Formula(1.5, "Smokes(x) => Cancer(x)").
		Build()

	evidence := dsl.NewEvidence().
		True("Smokes", "Anna").
		False("Smokes", "Bob").
		String()

	ctl.SetModel(model)
	ctl.SetDatabase(evidence, false)
*/
package dsl
