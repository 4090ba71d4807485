package signin

// Form is the active input step of the sign-in screen.
type Form int

const (
	FormEmail Form = iota + 1
	FormPassword
	FormSignIn
)

func (f Form) String() string {
	switch f {
	case FormEmail:
		return "email"
	case FormPassword:
		return "password"
	case FormSignIn:
		return "signIn"
	default:
		return "unknown"
	}
}

type action func(*Controller)

// transition moves the form to next and then runs actions in order.
type transition struct {
	next    Form
	actions []action
}

// Submitting the password step advances to the sign-in step and also runs the sign-in step's
// action, so one submit from the password field signs in.
var transitions = map[Form]transition{
	FormEmail:    {next: FormPassword},
	FormPassword: {next: FormSignIn, actions: []action{(*Controller).signIn}},
	FormSignIn:   {next: FormSignIn, actions: []action{(*Controller).signIn}},
}
