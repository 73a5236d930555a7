package composer

// SubjectTarget is one subject's draw quota within a composition.
type SubjectTarget struct {
	SubjectID string
	Target    int
}

// EvenTargets splits total across subjects so that targets differ by at
// most one and sum exactly to total: every subject gets floor(total/n),
// and the first total mod n subjects (in resolved order) get one extra.
func EvenTargets(subjectIDs []string, total int) []SubjectTarget {
	if len(subjectIDs) == 0 || total <= 0 {
		return []SubjectTarget{}
	}

	base := total / len(subjectIDs)
	remainder := total % len(subjectIDs)

	targets := make([]SubjectTarget, len(subjectIDs))
	for i, id := range subjectIDs {
		target := base
		if i < remainder {
			target++
		}
		targets[i] = SubjectTarget{SubjectID: id, Target: target}
	}
	return targets
}
