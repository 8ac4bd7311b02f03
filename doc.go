/*
Package formz provides headless form state management for server-rendered
Go applications.

A Controller owns one form's value, runs a whole-form Validator on every
change, applies effects that rewrite dependent fields, and notifies
subscribers. Fields, forms and submit buttons are rendered with templ; the
rendering layer only reads controller state.

formz is embedded in services that render forms, not run on its own.

# Basic Usage

Describe the validation rules and create a controller:

	minLen := 8
	rules, err := formz.NewRuleValidator(formz.Rules{
	    "email":    {Required: true, Email: true},
	    "password": {Required: true, MinLength: &minLen},
	})

	ctrl, err := formz.New(rules,
	    formz.WithID("login"),
	    formz.WithOnSubmit(func(ctx context.Context, v formz.Value) error {
	        return sessions.Login(ctx, v)
	    }),
	)

Bind fields to dotted keys and feed them user input:

	email := formz.NewField(ctrl, "email", formz.WithTiming(formz.TimingImmediate))
	email.Mount()
	defer email.Unmount()

	email.OnChange(ctx, "ross@example.com")
	email.OnBlur()

	issues, err := ctrl.Submit(ctx)

Rules can also be loaded from YAML or JSON with LoadRuleFile, or taken from
struct tags with NewStructValidator.

# Effects

Effects run after every input change and may rewrite other keys:

	formz.WithEffects(formz.ResetOnChange("dhcp", formz.Value{
	    "ip":     "192.168.100.10",
	    "subnet": "255.255.255.0",
	}))

Fields whose key an effect touched revalidate and show their errors at once,
regardless of their timing.

# Observers

ErrorsObserver, ChangedObserver, ValidityObserver, ValueObserver and Selector
derive state for the rest of a page. The validity observer keeps a form with
an initial value invalid until its first change:

	valid := formz.NewValidityObserver(ctrl, func(ok bool) {
	    log.Printf("submit enabled: %v", ok)
	})
	valid.Start()
	defer valid.Close()

# Feeds

A Feed keeps a registered form in step with an external document, such as a
file or a Redis key. Malformed documents are rejected and the last good value
is retained:

	bus := formz.NewBus()
	bus.Register(ctrl)

	feed := formz.NewFeed(formz.NewFileWatcher("profile.yaml"), bus, "profile").
	    Debounce(200 * time.Millisecond)
	feed.Start(ctx)

# Observability

Every operation emits a capitan signal. LogSignals routes them to a zap
logger; WithMetrics and Feed.Metrics accept a MetricsProvider such as the one
in pkg/prometheus.

All Controller methods must be called from one goroutine at a time. Use the
Bus to serialize access when forms are driven from several goroutines.
*/
package formz
