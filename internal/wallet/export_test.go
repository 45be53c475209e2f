package wallet

// SubscriberCount reports how many handlers p has registered on its bus.
func SubscriberCount(p *LocalProvider) int {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	n := 0
	for _, t := range p.topics {
		if p.bus.HasCallback(t) {
			n++
		}
	}
	return n
}
