package mesh

import "sort"

// BoneWeight binds a vertex to up to four bones. Weights are conventionally
// stored in descending order and sum to 1; neither is enforced on input.
type BoneWeight struct {
	BoneIndex0 int32
	BoneIndex1 int32
	BoneIndex2 int32
	BoneIndex3 int32
	Weight0    float32
	Weight1    float32
	Weight2    float32
	Weight3    float32
}

type boneEntry struct {
	bone   int32
	weight float32
}

// Normalized returns a copy whose weights sum to 1. A zero-weight record is
// returned unchanged.
func (b BoneWeight) Normalized() BoneWeight {
	total := b.Weight0 + b.Weight1 + b.Weight2 + b.Weight3
	if total == 0 {
		return b
	}
	inv := 1 / total
	b.Weight0 *= inv
	b.Weight1 *= inv
	b.Weight2 *= inv
	b.Weight3 *= inv
	return b
}

// MergeBoneWeights combines two bone-weight records. Weights for the same
// bone id are summed, the four heaviest entries are kept in descending order
// and the result is renormalized.
func MergeBoneWeights(a, b BoneWeight) BoneWeight {
	entries := make([]boneEntry, 0, 8)
	add := func(bone int32, weight float32) {
		if weight <= 0 {
			return
		}
		for i := range entries {
			if entries[i].bone == bone {
				entries[i].weight += weight
				return
			}
		}
		entries = append(entries, boneEntry{bone, weight})
	}
	add(a.BoneIndex0, a.Weight0)
	add(a.BoneIndex1, a.Weight1)
	add(a.BoneIndex2, a.Weight2)
	add(a.BoneIndex3, a.Weight3)
	add(b.BoneIndex0, b.Weight0)
	add(b.BoneIndex1, b.Weight1)
	add(b.BoneIndex2, b.Weight2)
	add(b.BoneIndex3, b.Weight3)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].weight > entries[j].weight
	})
	if len(entries) > 4 {
		entries = entries[:4]
	}

	var out BoneWeight
	bones := []*int32{&out.BoneIndex0, &out.BoneIndex1, &out.BoneIndex2, &out.BoneIndex3}
	weights := []*float32{&out.Weight0, &out.Weight1, &out.Weight2, &out.Weight3}
	for i, e := range entries {
		*bones[i] = e.bone
		*weights[i] = e.weight
	}
	return out.Normalized()
}
